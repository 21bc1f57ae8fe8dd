//go:build darwin

package uevloop

import "golang.org/x/sys/unix"

// unix.FdSet.Bits is [32]int32 on Darwin (1024 bits).

func fdZero(set *unix.FdSet) {
	for i := range set.Bits {
		set.Bits[i] = 0
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/32] |= 1 << (uint(fd) % 32)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/32]&(1<<(uint(fd)%32)) != 0
}
