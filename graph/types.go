// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ik5/audroom/audio"
)

// Loader fetches and decodes an audio asset.
type Loader interface {
	Load(ctx context.Context, uri string) (*audio.Buffer, error)
}

// Sink is the audible output. Play replaces whatever the sink was playing;
// once Halt returns the sink no longer reads the previous source.
type Sink interface {
	Play(src audio.Source) error
	Halt()
}

type PipelineID uuid.UUID

func (id PipelineID) String() string { return uuid.UUID(id).String() }

type State int

const (
	Idle State = iota
	Loading
	Connected
	Playing
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Connected:
		return "connected"
	case Playing:
		return "playing"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PipelineMode selects the chain Connect builds. It is either Direct or
// Convolved.
type PipelineMode interface {
	pipelineMode()
}

// Direct plays the track through a gain node only.
type Direct struct {
	Gain float64
}

// Convolved runs the track through IR before the gain node.
type Convolved struct {
	IR   *audio.Buffer
	Gain float64
}

func (Direct) pipelineMode()    {}
func (Convolved) pipelineMode() {}

// ModeName is "direct" or "convolved".
func ModeName(m PipelineMode) string {
	switch m.(type) {
	case Direct:
		return "direct"
	case Convolved:
		return "convolved"
	default:
		return "none"
	}
}

// Info describes the connected pipeline.
type Info struct {
	ID    PipelineID
	Mode  string
	State State
	// Gain is the value applied most recently; Target is where it is ramping.
	Gain   float64
	Target float64
}
