package orchestration

import "golang.org/x/sys/unix"

// systemMemory returns the total RAM in bytes, or 0 when unknown.
func systemMemory() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return uint64(info.Totalram) * uint64(info.Unit)
}
