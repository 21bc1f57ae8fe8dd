//go:build linux || darwin

package uevloop

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// loopbackAddr is 127.0.0.1, the wake socket's fixed address, ported
// from original_source/src/iothread.c's locsock_create.
var loopbackAddr = [4]byte{127, 0, 0, 1}

func (s *selector) openWake() error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return err
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: 0, Addr: loopbackAddr}); err != nil {
		_ = unix.Close(fd)
		return err
	}
	sa, err := unix.Getsockname(fd)
	if err != nil {
		_ = unix.Close(fd)
		return err
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		_ = unix.Close(fd)
		return errors.New("uevloop: unexpected socket address type")
	}
	s.wakeFD = fd
	s.wakePort = sa4.Port
	return nil
}

func (s *selector) signalWake() {
	_ = unix.Sendto(s.wakeFD, []byte{0}, 0, &unix.SockaddrInet4{Port: s.wakePort, Addr: loopbackAddr})
}

func (s *selector) drainWake() {
	buf := make([]byte, 64)
	for {
		if _, _, err := unix.Recvfrom(s.wakeFD, buf, unix.MSG_DONTWAIT); err != nil {
			return
		}
	}
}

// ioEntry is a per-iteration snapshot of one watched descriptor,
// taken under globalCS so the select(2) call itself runs lock-free.
type ioEntry struct {
	fd int
	w  *IOWatcher
}

// runLoop is the selector goroutine body: rebuild the fd_sets, block
// in select(2), and post readiness into each ready watcher's Context
// bit-group. Runs for the lifetime of the process once started; there
// is exactly one of these per process, matching spec.md §4.C.
func (s *selector) runLoop() {
	for {
		globalCS.Lock()
		var rset, wset, eset unix.FdSet
		fdZero(&rset)
		fdZero(&wset)
		fdZero(&eset)
		fdSet(&rset, s.wakeFD)
		nfds := s.wakeFD

		entries := make([]ioEntry, 0, len(s.watchers))
		for fd, w := range s.watchers {
			// Open question (spec.md §9): a watcher whose pending
			// bits haven't been cleared by the dispatch loop yet is
			// excluded from this rebuild. This is the documented
			// rearm race: it favors coalescing bursts of readiness
			// on a slow consumer over instantly noticing new
			// activity on the same descriptor.
			if w.pending.Load() != 0 {
				continue
			}
			if w.want&ReadEvent != 0 {
				fdSet(&rset, fd)
			}
			if w.want&WriteEvent != 0 {
				fdSet(&wset, fd)
			}
			// Every watched descriptor is monitored for exceptional
			// conditions regardless of its requested read/write mask:
			// select(2)'s exceptfds is a distinct concern from
			// readability/writability (spec.md §4.C step 1).
			fdSet(&eset, fd)
			if fd > nfds {
				nfds = fd
			}
			entries = append(entries, ioEntry{fd: fd, w: w})
		}
		globalCS.Unlock()

		n, err := unix.Select(nfds+1, &rset, &wset, &eset, nil)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if _, ok := s.errLimiter.Allow("select"); ok {
				logSelectorError("select", err)
			} else {
				s.errCount.Add(1) // logSelectorError counts the ones it logs
			}
			time.Sleep(time.Second)
			continue
		}
		if n == 0 {
			continue
		}

		if fdIsSet(&rset, s.wakeFD) {
			s.drainWake()
		}
		for _, e := range entries {
			var ev EventMask
			if fdIsSet(&rset, e.fd) {
				ev |= ReadEvent
			}
			if fdIsSet(&wset, e.fd) {
				ev |= WriteEvent
			}
			if fdIsSet(&eset, e.fd) {
				ev |= ErrorEvent
			}
			if ev != 0 {
				e.w.postReady(ev)
				e.w.ctx.bg.setBits(BitIO)
			}
		}
	}
}
