package resolve

import (
	"context"

	"go.uber.org/zap"

	"github.com/exile-tools/poewiki-cli/internal/model"
	"github.com/exile-tools/poewiki-cli/internal/render"
)

// Detailer performs the full-field fetch for an already-identified item.
type Detailer interface {
	Detail(ctx context.Context, base model.Item) (model.Item, error)
}

// Editor replaces a previously sent inline message in place. The item
// name rides along so transports can rebuild name-derived chrome such as
// link buttons.
type Editor interface {
	EditMessage(ctx context.Context, inlineMessageID, html, itemName string) error
}

// Flow drives one inline interaction through its states: Selected (a
// placeholder was sent and a pending entry registered), Resolving (the
// chosen-result feedback arrived and exactly one detailed fetch runs)
// and Resolved (the entry is discarded whatever the outcome). A failed
// detailed fetch leaves the placeholder untouched rather than showing
// the user a broken state.
type Flow struct {
	pending  *PendingStore[model.Item]
	detailer Detailer
	editor   Editor
}

// NewFlow creates a Flow.
func NewFlow(detailer Detailer, editor Editor) *Flow {
	return &Flow{
		pending:  NewPendingStore[model.Item](),
		detailer: detailer,
		editor:   editor,
	}
}

// Selected registers the minimal item behind a freshly answered inline
// result.
func (f *Flow) Selected(resultID string, item model.Item) {
	f.pending.Put(resultID, item)
	zap.L().Debug("inline result registered",
		zap.String("result_id", resultID),
		zap.String("item", item.Name),
	)
}

// Chosen handles the chosen-result feedback event. Unknown identifiers
// are logged and ignored: the feedback may be a duplicate delivery or
// may have outlived a process restart. No error escapes.
func (f *Flow) Chosen(ctx context.Context, resultID, inlineMessageID string) {
	if inlineMessageID == "" {
		// Nothing to edit. The entry stays pending so later feedback
		// that does carry a message id can still resolve it.
		zap.L().Warn("chosen result without inline message id, cannot edit",
			zap.String("result_id", resultID),
		)
		return
	}

	base, ok := f.pending.Take(resultID)
	if !ok {
		zap.L().Debug("chosen result has no pending entry, ignoring",
			zap.String("result_id", resultID),
		)
		return
	}

	detailed, err := f.detailer.Detail(ctx, base)
	if err != nil {
		// Leave the placeholder as sent; a never-enriched message beats
		// an error shown in chat.
		zap.L().Warn("detailed fetch failed, leaving placeholder",
			zap.String("item", base.Name),
			zap.Error(err),
		)
		return
	}

	if err := f.editor.EditMessage(ctx, inlineMessageID, render.Telegram(detailed), detailed.Name); err != nil {
		zap.L().Warn("message edit failed",
			zap.String("item", base.Name),
			zap.Error(err),
		)
	}
}

// PendingCount reports unconsumed selections, for the health endpoint.
func (f *Flow) PendingCount() int {
	return f.pending.Len()
}
