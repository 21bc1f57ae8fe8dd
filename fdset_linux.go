//go:build linux

package uevloop

import "golang.org/x/sys/unix"

// unix.FdSet.Bits is [16]int64 on Linux (1024 bits). golang.org/x/sys
// deliberately ships no Set/Clear/IsSet helpers, so every select(2)
// caller writes its own; this is that.

func fdZero(set *unix.FdSet) {
	for i := range set.Bits {
		set.Bits[i] = 0
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}
