// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"sync"
	"time"
)

// SpinnerType selects the animation frames.
type SpinnerType int

const (
	// SpinnerDots is the default braille animation.
	SpinnerDots SpinnerType = iota

	// SpinnerPulse is a slower dot pulse, used for probe-style waits.
	SpinnerPulse
)

// frameInterval is the animation tick. Fast enough to look alive, slow
// enough not to dominate a terminal over ssh.
const frameInterval = 80 * time.Millisecond

// framesFor returns the frame set for a spinner type.
func framesFor(t SpinnerType) []string {
	if t == SpinnerPulse {
		return []string{"●", "◉", "○", "◉"}
	}
	return []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
}

// Spinner is an animated wait indicator for operations without their
// own progress output (environment probes, pre-flight checks). In
// machine personality it degrades to a single "PROGRESS:" line.
type Spinner struct {
	mu      sync.Mutex
	message string
	frames  []string
	frame   int
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a dots spinner with the given message.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		frames:  framesFor(SpinnerDots),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// WithType switches the animation frames. Call before Start.
func (s *Spinner) WithType(t SpinnerType) *Spinner {
	s.frames = framesFor(t)
	return s
}

// Start begins the animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	if GetPersonality().Level == PersonalityMachine {
		fmt.Printf("PROGRESS: %s\n", s.message)
		return
	}
	go s.run()
}

// run animates until Stop, then clears its line.
func (s *Spinner) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			fmt.Print("\r\033[K")
			close(s.done)
			return
		case <-ticker.C:
			s.mu.Lock()
			message := s.message
			frame := s.frames[s.frame]
			s.frame = (s.frame + 1) % len(s.frames)
			s.mu.Unlock()
			fmt.Printf("\r%s %s", Styles.Highlight.Render(frame), message)
		}
	}
}

// Stop halts the animation and waits for the line to be cleared.
// Stopping a stopped spinner is a no-op.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	if GetPersonality().Level == PersonalityMachine {
		return
	}

	close(s.stop)
	<-s.done
}

// UpdateMessage changes the spinner text while it is running.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// StopWithSuccess stops the animation and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	Success(message)
}

// StopWithError stops the animation and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	Error(message)
}
