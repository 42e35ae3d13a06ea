package cw

import "iter"

// MergeLogEvents merge-sorts two ascending iterators by Timestamp.
func MergeLogEvents(left, right iter.Seq2[LogEvent, error]) iter.Seq2[LogEvent, error] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	return func(yield func(LogEvent, error) bool) {
		nextL, stopL := iter.Pull2(left)
		defer stopL()
		nextR, stopR := iter.Pull2(right)
		defer stopR()

		l, lErr, lOk := nextL()
		r, rErr, rOk := nextR()
		for lOk || rOk {
			if lOk && lErr != nil {
				yield(l, lErr)
				return
			}
			if rOk && rErr != nil {
				yield(r, rErr)
				return
			}
			if !rOk || (lOk && ptrTime(l) <= ptrTime(r)) {
				if !yield(l, nil) {
					return
				}
				l, lErr, lOk = nextL()
			} else {
				if !yield(r, nil) {
					return
				}
				r, rErr, rOk = nextR()
			}
		}
	}
}

func ptrTime(e LogEvent) int64 {
	if e.Timestamp == nil {
		return 0
	}
	return *e.Timestamp
}

// TakeLastN buffers the input and yields only the last n items. n <= 0 yields everything.
func TakeLastN(seq iter.Seq2[LogEvent, error], n int) iter.Seq2[LogEvent, error] {
	if n <= 0 {
		return seq
	}
	return func(yield func(LogEvent, error) bool) {
		var buffer []LogEvent
		for evt, err := range seq {
			if err != nil {
				yield(evt, err)
				return
			}
			buffer = append(buffer, evt)
			if len(buffer) > n {
				buffer = buffer[1:]
			}
		}
		for _, evt := range buffer {
			if !yield(evt, nil) {
				return
			}
		}
	}
}
