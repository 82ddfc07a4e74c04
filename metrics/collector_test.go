package metrics

import (
	"sync"
	"testing"
)

func TestCollector_IncrementMethods(t *testing.T) {
	c := NewCollector("0.1.0", "fs")

	c.RecordFrameRead(17)
	c.RecordFrameRead(40)
	c.RecordFrameWritten(16)
	c.IncDecodeErrors()
	c.IncRequest("ping")
	c.IncRequest("save")
	c.IncRequest("save")
	c.RecordSaveSuccess(2)
	c.IncSaveFailed()
	c.IncMirrorSuccess()
	c.IncMirrorFailure()
	c.IncMirrorFailure()

	s := c.Snapshot()

	if s.FramesRead != 2 {
		t.Errorf("FramesRead = %d, want 2", s.FramesRead)
	}
	if s.BytesRead != 57 {
		t.Errorf("BytesRead = %d, want 57", s.BytesRead)
	}
	if s.FramesWritten != 1 || s.BytesWritten != 16 {
		t.Errorf("FramesWritten/BytesWritten = %d/%d, want 1/16", s.FramesWritten, s.BytesWritten)
	}
	if s.DecodeErrors != 1 {
		t.Errorf("DecodeErrors = %d, want 1", s.DecodeErrors)
	}
	if s.Requests["ping"] != 1 || s.Requests["save"] != 2 {
		t.Errorf("Requests = %v, want ping=1 save=2", s.Requests)
	}
	if s.SavesSucceeded != 1 || s.BytesSaved != 2 {
		t.Errorf("SavesSucceeded/BytesSaved = %d/%d, want 1/2", s.SavesSucceeded, s.BytesSaved)
	}
	if s.SavesFailed != 1 {
		t.Errorf("SavesFailed = %d, want 1", s.SavesFailed)
	}
	if s.MirrorSuccess != 1 || s.MirrorFailure != 2 {
		t.Errorf("MirrorSuccess/MirrorFailure = %d/%d, want 1/2", s.MirrorSuccess, s.MirrorFailure)
	}
	if s.Version != "0.1.0" || s.MirrorBackend != "fs" {
		t.Errorf("dimensions = %q/%q, want 0.1.0/fs", s.Version, s.MirrorBackend)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	// None of these should panic
	c.RecordFrameRead(1)
	c.RecordFrameWritten(1)
	c.IncDecodeErrors()
	c.IncRequest("ping")
	c.RecordSaveSuccess(1)
	c.IncSaveFailed()
	c.IncMirrorSuccess()
	c.IncMirrorFailure()

	s := c.Snapshot()
	if s.FramesRead != 0 || s.Requests != nil {
		t.Errorf("nil collector snapshot = %+v, want zero value", s)
	}
}

func TestCollector_SnapshotIsolation(t *testing.T) {
	c := NewCollector("0.1.0", "")
	c.IncRequest("ping")

	s := c.Snapshot()
	c.IncRequest("ping")
	s.Requests["ping"] = 99

	if got := c.Snapshot().Requests["ping"]; got != 2 {
		t.Errorf("collector ping count = %d, want 2", got)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("0.1.0", "")
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncRequest("save")
			c.RecordFrameRead(1)
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.Requests["save"] != 50 || s.FramesRead != 50 {
		t.Errorf("Requests[save]/FramesRead = %d/%d, want 50/50", s.Requests["save"], s.FramesRead)
	}
}

func TestSnapshot_Fields(t *testing.T) {
	c := NewCollector("0.1.0", "s3")
	c.RecordSaveSuccess(10)

	fields := c.Snapshot().Fields()
	if fields["saves_succeeded"] != int64(1) {
		t.Errorf("saves_succeeded = %v, want 1", fields["saves_succeeded"])
	}
	if fields["mirror_backend"] != "s3" {
		t.Errorf("mirror_backend = %v, want s3", fields["mirror_backend"])
	}
}
