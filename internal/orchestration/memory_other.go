//go:build !linux

package orchestration

func systemMemory() uint64 { return 0 }
