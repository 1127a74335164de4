// Package panel keeps long-lived listing messages in sync with their source.
package panel

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"orgbot/lifecycle"
	"orgbot/model"
)

// Source yields the active records rendered into a record-backed listing.
type Source interface {
	ListByKind(kind model.RecordKind) ([]model.SanctionRecord, error)
}

// RenderFunc turns the current active record set into the full listing
// content. Every change re-renders from scratch: simpler than diffing, and
// self-healing if the message content ever drifts.
type RenderFunc func(records []model.SanctionRecord) lifecycle.Message

// ContentFunc produces the full current content of a listing.
type ContentFunc func() (lifecycle.Message, error)

// Listing owns a single long-lived message enumerating some collection. It
// locates its message at startup by scanning recent bot-authored messages
// for the configured title and recreates it whenever it has gone missing.
type Listing struct {
	platform  lifecycle.Platform
	name      string
	channelID string
	title     string
	content   ContentFunc

	mu        sync.Mutex
	messageID string
}

func NewListing(platform lifecycle.Platform, name, channelID, title string, content ContentFunc) *Listing {
	return &Listing{
		platform:  platform,
		name:      name,
		channelID: channelID,
		title:     title,
		content:   content,
	}
}

// NewRecordListing builds a listing over the active records of one kind.
func NewRecordListing(store Source, platform lifecycle.Platform, kind model.RecordKind, channelID, title string, render RenderFunc) *Listing {
	return NewListing(platform, string(kind), channelID, title, func() (lifecycle.Message, error) {
		records, err := store.ListByKind(kind)
		if err != nil {
			return lifecycle.Message{}, fmt.Errorf("failed to load %s records for listing: %w", kind, err)
		}
		return render(records), nil
	})
}

// Refresh re-renders the listing from its source, editing the known message
// when possible and otherwise locating or recreating it. Implements
// lifecycle.Refresher.
func (l *Listing) Refresh() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, err := l.content()
	if err != nil {
		return err
	}

	if l.messageID != "" {
		err := l.platform.EditPanel(l.channelID, l.messageID, msg)
		if err == nil {
			return nil
		}
		if !errors.Is(err, lifecycle.ErrGone) {
			return fmt.Errorf("failed to edit %s listing panel: %w", l.name, err)
		}
		// Deleted out-of-band; fall through and recreate.
		log.Printf("[panel] %s listing message %s is gone, recreating", l.name, l.messageID)
		l.messageID = ""
	}

	if id, err := l.platform.FindPanel(l.channelID, l.title); err == nil && id != "" {
		err := l.platform.EditPanel(l.channelID, id, msg)
		if err == nil {
			l.messageID = id
			return nil
		}
		// A hard failure on an adopted message must not fall through to
		// SendPanel and leave two listings; only a vanished message does.
		if !errors.Is(err, lifecycle.ErrGone) {
			return fmt.Errorf("failed to edit %s listing panel: %w", l.name, err)
		}
	}

	id, err := l.platform.SendPanel(l.channelID, msg)
	if err != nil {
		return fmt.Errorf("failed to send %s listing panel: %w", l.name, err)
	}
	l.messageID = id
	return nil
}
