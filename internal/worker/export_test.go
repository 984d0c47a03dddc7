package worker

import "time"

// SetClock pins the time the jobs run at.
func (j *Jobs) SetClock(now func() time.Time) {
	j.now = now
}
