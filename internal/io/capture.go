// Frame acquisition from cameras, streams and video files
package io

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ErrSourceClosed is returned when a source stops delivering frames.
var ErrSourceClosed = errors.New("capture source returned no frame")

// FrameReader is satisfied by *gocv.VideoCapture.
type FrameReader interface {
	Read(m *gocv.Mat) bool
}

// OpenSource opens a capture source. A numeric url is a local device index;
// anything else is passed to OpenCV as a file or stream URL.
func OpenSource(url string) (*gocv.VideoCapture, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("empty capture url")
	}

	if id, err := strconv.Atoi(url); err == nil {
		vc, err := gocv.VideoCaptureDevice(id)
		if err != nil {
			return nil, fmt.Errorf("open device %d: %w", id, err)
		}
		return vc, nil
	}

	vc, err := gocv.VideoCaptureFile(url)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	return vc, nil
}

// FrameCount is the number of frames a capture of the given length holds.
func FrameCount(fps, seconds float64) int {
	if fps <= 0 || seconds <= 0 || math.IsNaN(fps*seconds) || math.IsInf(fps*seconds, 0) {
		return 0
	}
	return int(fps * seconds)
}

// Capturer grabs paced frame sequences.
type Capturer struct {
	logger logrus.FieldLogger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewCapturer(logger logrus.FieldLogger) *Capturer {
	if logger == nil {
		logger = discard()
	}
	return &Capturer{logger: logger, sleep: sleepContext}
}

// CaptureSequence reads FrameCount(fps, seconds) frames, one every 1/fps
// seconds, and hands each to fn. The Mat passed to fn is reused; fn must clone
// it to keep it. Cancelling ctx stops between frames.
func (c *Capturer) CaptureSequence(ctx context.Context, reader FrameReader, fps, seconds float64, fn func(index int, frame gocv.Mat) error) (int, error) {
	total := FrameCount(fps, seconds)
	if total == 0 {
		return 0, fmt.Errorf("invalid capture length: %g fps for %g s", fps, seconds)
	}
	interval := time.Duration(float64(time.Second) / fps)

	log := c.logger.WithFields(logrus.Fields{"frames": total, "interval": interval})
	log.Info("Capture started")

	frame := gocv.NewMat()
	defer frame.Close()

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if i > 0 {
			if err := c.sleep(ctx, interval); err != nil {
				return i, err
			}
		}

		if !reader.Read(&frame) || frame.Empty() {
			log.WithField("index", i).Warn("Capture source returned no frame")
			return i, fmt.Errorf("frame %d: %w", i, ErrSourceClosed)
		}
		if err := fn(i, frame); err != nil {
			return i, err
		}
	}

	log.Info("Capture finished")
	return total, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
