// Package editor implements the content editing and listing flows on top of
// a ContentStore.
package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/slug"
	"github.com/starford/ansuz/internal/store"
)

// State of an editing session.
type State int

const (
	// StateLoadingExisting is entered only when editing by id.
	StateLoadingExisting State = iota
	// StateEditing accepts local field edits.
	StateEditing
	// StateSubmitting has exactly one write in flight; Submit is not
	// re-entrant while here.
	StateSubmitting
	// StateDone is terminal: the write succeeded, navigate to the list.
	StateDone
	// StateFailed holds the server's message. After a failed write the
	// session is still live: the next field edit returns it to editing,
	// and a resubmit retries directly. After a failed load it is
	// terminal.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoadingExisting:
		return "loading-existing"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Editor is one editing session for a post or page. It owns a draft, the
// auto-slug latch, and the session state machine.
type Editor struct {
	store    store.ContentStore
	kind     models.Kind
	id       string
	state    State
	draft    models.Draft
	autoSlug bool
	notice   string
	// terminal marks a failed load, which unlike a failed write cannot
	// be retried from within the session.
	terminal bool
}

// New starts a session creating a new record of the given kind. The slug
// field auto-fills from the title until manually overridden.
func New(cs store.ContentStore, kind models.Kind) *Editor {
	return &Editor{
		store:    cs,
		kind:     kind,
		state:    StateEditing,
		draft:    models.Draft{Status: models.StatusDraft},
		autoSlug: true,
	}
}

// Edit starts a session over an existing record. Load must be called before
// editing; records loaded for editing never auto-fill their slug.
func Edit(cs store.ContentStore, kind models.Kind, id string) *Editor {
	return &Editor{
		store: cs,
		kind:  kind,
		id:    id,
		state: StateLoadingExisting,
	}
}

// State returns the session state.
func (e *Editor) State() State {
	return e.state
}

// Notice returns the message surfaced by the last failure, empty otherwise.
func (e *Editor) Notice() string {
	return e.notice
}

// Draft returns the current draft.
func (e *Editor) Draft() models.Draft {
	return e.draft
}

// Load fetches the record being edited. On not-found or transport error the
// session is terminal: the caller surfaces the notice and exits to the list
// view.
func (e *Editor) Load(ctx context.Context) error {
	if e.state != StateLoadingExisting {
		return fmt.Errorf("editor: load in state %s", e.state)
	}
	record, err := e.store.Get(ctx, e.kind, e.id)
	if err != nil {
		e.state = StateFailed
		e.terminal = true
		if errors.Is(err, apperr.ErrNotFound) {
			e.notice = fmt.Sprintf("%s not found", e.kind)
		} else {
			e.notice = fmt.Sprintf("failed to load %s: %s", e.kind, err)
		}
		return err
	}
	e.draft = models.Draft{
		Title:       record.Title,
		Slug:        record.Slug,
		Content:     record.Content,
		Excerpt:     record.Excerpt,
		CoverImage:  record.CoverImage,
		Status:      record.Status,
		AuthorID:    record.AuthorID,
		PublishedAt: record.PublishedAt,
	}
	e.state = StateEditing
	return nil
}

// resume returns a failed-write session to editing on the next field
// edit. Terminal sessions stay failed.
func (e *Editor) resume() {
	if e.state == StateFailed && !e.terminal {
		e.state = StateEditing
	}
}

// SetTitle updates the title. While the auto-slug latch is open and the
// session creates a new record, the slug field follows the title.
func (e *Editor) SetTitle(title string) {
	e.resume()
	e.draft.Title = title
	if e.autoSlug && e.id == "" {
		e.draft.Slug = slug.Generate(title)
	}
}

// SetSlug sets the slug directly and permanently closes the auto-slug latch
// for this session: once the user edits the slug by hand, title changes
// stop regenerating it.
func (e *Editor) SetSlug(s string) {
	e.resume()
	e.draft.Slug = s
	e.autoSlug = false
}

// SetContent updates the body.
func (e *Editor) SetContent(content string) {
	e.resume()
	e.draft.Content = content
}

// SetExcerpt updates the excerpt (posts only).
func (e *Editor) SetExcerpt(excerpt string) {
	e.resume()
	e.draft.Excerpt = excerpt
}

// SetCoverImage updates the cover image URL (posts only).
func (e *Editor) SetCoverImage(url string) {
	e.resume()
	e.draft.CoverImage = url
}

// SetStatus selects the status used by a plain Submit.
func (e *Editor) SetStatus(status models.Status) {
	e.resume()
	e.draft.Status = status
}

// SetAuthor stamps the authenticated principal into the write payload.
func (e *Editor) SetAuthor(user *models.User) {
	e.resume()
	if user != nil {
		e.draft.AuthorID = user.ID
	}
}

// Submit issues the write with whatever status is currently selected.
func (e *Editor) Submit(ctx context.Context) (*models.Record, error) {
	return e.submit(ctx, e.draft.Status)
}

// SaveDraft stamps draft status into the payload regardless of the
// selected status, then submits.
func (e *Editor) SaveDraft(ctx context.Context) (*models.Record, error) {
	return e.submit(ctx, models.StatusDraft)
}

// Publish stamps published status into the payload regardless of the
// selected status, then submits.
func (e *Editor) Publish(ctx context.Context) (*models.Record, error) {
	return e.submit(ctx, models.StatusPublished)
}

func (e *Editor) submit(ctx context.Context, status models.Status) (*models.Record, error) {
	if e.state == StateSubmitting {
		return nil, fmt.Errorf("editor: submit already in flight")
	}
	// A failed write may be retried directly; a failed load may not.
	if e.state != StateEditing && !(e.state == StateFailed && !e.terminal) {
		return nil, fmt.Errorf("editor: submit in state %s", e.state)
	}

	draft := e.draft
	draft.Status = status
	if err := draft.Validate(e.kind); err != nil {
		// Validation failures never leave the session and never reach
		// the store.
		e.notice = err.Error()
		e.state = StateEditing
		return nil, &apperr.ValidationError{Field: "draft", Reason: err.Error()}
	}

	e.state = StateSubmitting
	record, err := e.write(ctx, draft)
	if err != nil {
		e.notice = failureNotice(e.kind, err)
		// Fields stay intact; the next edit or a resubmit continues the
		// session.
		e.state = StateFailed
		return nil, err
	}
	e.draft = draft
	e.state = StateDone
	e.notice = ""
	return record, nil
}

func (e *Editor) write(ctx context.Context, draft models.Draft) (*models.Record, error) {
	if e.id == "" {
		return e.store.Create(ctx, e.kind, draft)
	}
	return e.store.Update(ctx, e.kind, e.id, draft)
}

// failureNotice renders the server's message verbatim, except for slug
// uniqueness conflicts which get a distinguished message.
func failureNotice(kind models.Kind, err error) string {
	if errors.Is(err, apperr.ErrConflict) {
		return fmt.Sprintf("a %s with this slug already exists, please use a different slug", kind)
	}
	return err.Error()
}
