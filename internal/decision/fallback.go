package decision

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mkellerman/gutlog/internal/llm"
	"github.com/mkellerman/gutlog/internal/nlu"
)

const slotFillSystemPrompt = `You complete missing fields for a health log entry.
Given the user's message, the detected intent, and the list of missing fields,
infer values for the missing fields from the message only. Do not invent
information that is not supported by the message.

Respond with a single JSON object:
{"slots": {"<field>": "<value>", ...}, "confidence": <number between 0 and 1>}

Omit any field you cannot infer. severity is an integer 1-10, bristol is an
integer 1-7.`

// slotFillOutput is the JSON shape the model must return.
type slotFillOutput struct {
	Slots      map[string]string `json:"slots"`
	Confidence float64           `json:"confidence"`
}

// SlotFiller completes missing slots through an llm.Client. Responses are
// cached by intent and message text so repeated clarification attempts on
// the same input do not re-invoke the model.
type SlotFiller struct {
	client   llm.Client
	ttl      time.Duration
	observer llm.Observer

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	result  FallbackResult
	expires time.Time
}

// NewSlotFiller creates a SlotFiller. A non-positive ttl disables caching;
// a nil observer discards cache-hit events.
func NewSlotFiller(client llm.Client, ttl time.Duration, observer llm.Observer) *SlotFiller {
	if observer == nil {
		observer = llm.NoopObserver{}
	}
	return &SlotFiller{
		client:   client,
		ttl:      ttl,
		observer: observer,
		cache:    make(map[string]cacheEntry),
	}
}

// CompleteSlots asks the model to fill the result's missing slots.
func (f *SlotFiller) CompleteSlots(ctx context.Context, text string, r *nlu.ParseResult) (*FallbackResult, error) {
	key := string(r.Intent) + "\x00" + strings.ToLower(strings.TrimSpace(text))
	if cached, ok := f.lookup(key); ok {
		f.observer.OnCallComplete(llm.CallEvent{
			Task:     llm.TaskSlotFill,
			Success:  true,
			CacheHit: true,
		})
		return cached, nil
	}

	resp, err := f.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskSlotFill,
		SystemPrompt: slotFillSystemPrompt,
		UserPrompt:   buildSlotFillPrompt(text, r),
	})
	if err != nil {
		return nil, err
	}

	out, err := llm.ExtractJSON(resp.Text, validateSlotFill)
	if err != nil {
		return nil, err
	}

	result := FallbackResult{
		Slots:      make(map[nlu.SlotName]string, len(out.Slots)),
		Confidence: out.Confidence,
	}
	for name, value := range out.Slots {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		result.Slots[nlu.SlotName(name)] = value
	}

	f.store(key, result)
	return &result, nil
}

func validateSlotFill(out slotFillOutput) error {
	if out.Confidence < 0 || out.Confidence > 1 {
		return fmt.Errorf("confidence %.2f out of range", out.Confidence)
	}
	return nil
}

func buildSlotFillPrompt(text string, r *nlu.ParseResult) string {
	missing := make([]string, 0, len(r.Missing))
	for _, name := range r.Missing {
		missing = append(missing, string(name))
	}
	sort.Strings(missing)

	var b strings.Builder
	fmt.Fprintf(&b, "Message: %s\n", text)
	fmt.Fprintf(&b, "Intent: %s\n", r.Intent)
	fmt.Fprintf(&b, "Missing fields: %s\n", strings.Join(missing, ", "))

	if pairs := r.Slots.Pairs(); len(pairs) > 0 {
		b.WriteString("Already known:\n")
		for _, p := range pairs {
			fmt.Fprintf(&b, "  %s: %s\n", p.Key, p.Value)
		}
	}
	return b.String()
}

func (f *SlotFiller) lookup(key string) (*FallbackResult, bool) {
	if f.ttl <= 0 {
		return nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.cache[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		delete(f.cache, key)
		return nil, false
	}
	result := entry.result
	result.Slots = make(map[nlu.SlotName]string, len(entry.result.Slots))
	for k, v := range entry.result.Slots {
		result.Slots[k] = v
	}
	return &result, true
}

func (f *SlotFiller) store(key string, result FallbackResult) {
	if f.ttl <= 0 {
		return
	}
	stored := result
	stored.Slots = make(map[nlu.SlotName]string, len(result.Slots))
	for k, v := range result.Slots {
		stored.Slots[k] = v
	}
	f.mu.Lock()
	f.cache[key] = cacheEntry{result: stored, expires: time.Now().Add(f.ttl)}
	f.mu.Unlock()
}
