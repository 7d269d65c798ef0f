package upload

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// State is a step of one upload attempt.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateUploading
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateUploading:
		return "uploading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Settled reports whether s is a terminal state.
func (s State) Settled() bool {
	return s == StateSucceeded || s == StateFailed
}

// Options configures a Flow.
type Options struct {
	PublicKey string
	Folder    string
	// Timeout bounds the auth fetch and the upload separately. Zero means no bound.
	Timeout time.Duration
	// OnState, if set, is called on every state transition.
	OnState func(State)
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Flow runs upload attempts: validate, fetch auth parameters, submit.
type Flow struct {
	auth      AuthFetcher
	transport Transport
	opts      Options
	log       zerolog.Logger

	busy  atomic.Bool
	state atomic.Int32
}

// NewFlow creates a Flow.
func NewFlow(fetcher AuthFetcher, transport Transport, opts Options) *Flow {
	f := &Flow{auth: fetcher, transport: transport, opts: opts, log: zerolog.Nop()}
	if opts.Logger != nil {
		f.log = *opts.Logger
	}
	return f
}

// State returns the state of the current or most recent attempt.
func (f *Flow) State() State {
	return State(f.state.Load())
}

// Upload runs a single attempt to completion. Every failure is returned as
// one of *ValidationError, *AuthFetchError, *UploadError or *TimeoutError,
// except ErrInFlight which is returned without running the attempt.
func (f *Flow) Upload(ctx context.Context, req Request) (Asset, error) {
	if !f.busy.CompareAndSwap(false, true) {
		return Asset{}, ErrInFlight
	}
	defer f.busy.Store(false)

	asset, err := f.run(ctx, req)
	if err != nil {
		f.setState(StateFailed)
		f.log.Debug().Err(err).Msg("upload failed")
		return Asset{}, err
	}
	f.setState(StateSucceeded)
	f.log.Debug().Str("url", asset.URL).Str("fileId", asset.FileID).Msg("upload succeeded")
	return asset, nil
}

func (f *Flow) run(ctx context.Context, req Request) (Asset, error) {
	f.setState(StateValidating)

	sub, err := f.prepare(req)
	if err != nil {
		return Asset{}, err
	}

	authCtx, cancel := f.withTimeout(ctx)
	params, err := f.auth.Fetch(authCtx)
	cancel()
	if err != nil {
		if isTimeout(err) {
			return Asset{}, &TimeoutError{Stage: "auth", Err: err}
		}
		return Asset{}, &AuthFetchError{Err: err}
	}
	sub.Auth = params

	f.setState(StateUploading)

	upCtx, cancel := f.withTimeout(ctx)
	defer cancel()
	asset, err := f.transport.Submit(upCtx, sub)
	if err != nil {
		var uerr *UploadError
		if errors.As(err, &uerr) {
			return Asset{}, err
		}
		if isTimeout(err) {
			return Asset{}, &TimeoutError{Stage: "upload", Err: err}
		}
		return Asset{}, &UploadError{Err: err}
	}
	return asset, nil
}

// prepare validates req and builds the submission without auth fields.
func (f *Flow) prepare(req Request) (Submission, error) {
	sub := Submission{
		UseUniqueFileName: true,
		Folder:            f.opts.Folder,
		PublicKey:         f.opts.PublicKey,
	}

	if err := req.Validate(); err != nil {
		return sub, err
	}
	if req.File != nil {
		sub.File = req.File
		sub.FileName = req.File.Name
	} else {
		sub.SourceURL = strings.TrimSpace(req.URL)
		sub.FileName = URLFileName
	}
	return sub, nil
}

func (f *Flow) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.opts.Timeout)
}

func (f *Flow) setState(s State) {
	f.state.Store(int32(s))
	if f.opts.OnState != nil {
		f.opts.OnState(s)
	}
}
