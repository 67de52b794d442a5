// Package nativecall bridges Go's internal calling convention to the
// System V AMD64 convention that JIT-compiled code expects: one pointer
// argument in rdi, one uint64 result in rax. Go's own calling convention
// since 1.17 is register-based but gives no guarantee that a plain
// func-value call lands an argument in rdi the way the platform ABI does,
// so the bridge is a small hand-written trampoline rather than a cast.
package nativecall

// Call invokes the machine code at addr code with heap in rdi, returning
// rax. Implemented in call_amd64.s.
func Call(code, heap uintptr) uint64
