// Package analytics computes the inbox dashboard: all-time metrics, the
// current and previous Monday to Sunday weeks, and their comparison.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/NextMind-AI/inbox-analytics/model"
	"github.com/NextMind-AI/inbox-analytics/store"
	"github.com/NextMind-AI/inbox-analytics/zone"
)

// Answered conversations are those whose first response came within this
// many minutes of the first received message.
const responseWindowMinutes = 24 * 60

type Aggregator struct {
	conversations store.ConversationStore
	events        store.EventStore
	zone          *zone.Zone
	now           func() time.Time
}

type Option func(*Aggregator)

// WithClock overrides the clock that decides which week is current.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

func New(conversations store.ConversationStore, events store.EventStore, z *zone.Zone, opts ...Option) *Aggregator {
	a := &Aggregator{
		conversations: conversations,
		events:        events,
		zone:          z,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Dashboard(ctx context.Context) (*Dashboard, error) {
	return a.DashboardAt(ctx, a.now())
}

// DashboardAt computes the dashboard as if the current time were now.
func (a *Aggregator) DashboardAt(ctx context.Context, now time.Time) (*Dashboard, error) {
	convs, err := a.conversations.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading conversations: %w", err)
	}

	general, err := a.general(ctx, convs)
	if err != nil {
		return nil, err
	}

	current := a.zone.WeekOf(a.zone.Today(now))
	prevWeek, err := a.weekly(ctx, current.Previous(), convs)
	if err != nil {
		return nil, err
	}
	curWeek, err := a.weekly(ctx, current, convs)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		General:      general,
		PreviousWeek: prevWeek,
		CurrentWeek:  curWeek,
		Comparison:   Compare(prevWeek, curWeek),
	}, nil
}

// Week computes the weekly section for the week containing day.
func (a *Aggregator) Week(ctx context.Context, day zone.Date) (Weekly, error) {
	convs, err := a.conversations.All(ctx)
	if err != nil {
		return Weekly{}, fmt.Errorf("loading conversations: %w", err)
	}
	return a.weekly(ctx, a.zone.WeekOf(day), convs)
}

func (a *Aggregator) general(ctx context.Context, convs []model.Conversation) (General, error) {
	msgs, err := a.events.All(ctx)
	if err != nil {
		return General{}, fmt.Errorf("loading messages: %w", err)
	}

	g := General{
		ConversationsTotal: len(convs),
		ByChannel:          newChannelCounts(),
	}

	var frts []int64
	answered := 0
	for _, c := range convs {
		frt, ok := c.FRTMinutes()
		if !ok {
			continue
		}
		frts = append(frts, frt)
		if frt <= responseWindowMinutes {
			answered++
		}
	}
	g.FRTAvgMinutes = mean(frts)
	g.ResponseRate24h = percent(answered, len(convs))

	for _, m := range msgs {
		if m.Outgoing {
			g.OutboundTotal++
		} else {
			g.InboundTotal++
		}
		g.ByChannel.add(m.Channel, m.Outgoing)
	}

	return g, nil
}

func (a *Aggregator) weekly(ctx context.Context, w zone.Week, convs []model.Conversation) (Weekly, error) {
	from, to := a.zone.Bounds(w)
	msgs, err := a.events.Range(ctx, from, to)
	if err != nil {
		return Weekly{}, fmt.Errorf("loading messages for week of %s: %w", w.Start, err)
	}

	out := Weekly{
		Window: Window{
			From: w.Start.String(),
			To:   w.End.String(),
			Zone: a.zone.Name(),
		},
		ByChannel:      newChannelCounts(),
		ByDay:          make(map[string]Counts, 7),
		ByDayByChannel: make(map[string]ChannelCounts, 7),
	}
	for _, d := range w.Days() {
		out.ByDay[d.String()] = Counts{}
		out.ByDayByChannel[d.String()] = newChannelCounts()
	}

	senders := make(map[string]struct{})
	for _, m := range msgs {
		senders[m.Sender] = struct{}{}
		if m.Outgoing {
			out.OutboundTotal++
		} else {
			out.InboundTotal++
		}
		out.ByChannel.add(m.Channel, m.Outgoing)

		day := a.zone.Date(m.Timestamp).String()
		if c, ok := out.ByDay[day]; ok {
			c.add(m.Outgoing)
			out.ByDay[day] = c
			out.ByDayByChannel[day].add(m.Channel, m.Outgoing)
		}
	}
	out.Conversations = len(senders)

	within := func(t *time.Time) bool {
		return t != nil && !t.Before(from) && t.Before(to)
	}

	// FRT belongs to the week of the response, the response rate to the
	// week of the first received message.
	var frts []int64
	received, answered := 0, 0
	for _, c := range convs {
		if within(c.FirstResponseAt) {
			if frt, ok := c.FRTMinutes(); ok {
				frts = append(frts, frt)
			}
		}
		if within(c.FirstReceivedAt) {
			received++
			if frt, ok := c.FRTMinutes(); ok && frt <= responseWindowMinutes {
				answered++
			}
		}
	}
	out.FRTAvgMinutes = mean(frts)
	out.ResponseRate24h = percent(answered, received)

	return out, nil
}

func mean(values []int64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float(float64(sum) / float64(len(values)))
}

func percent(part, total int) *float64 {
	if total == 0 {
		return nil
	}
	return float(100 * float64(part) / float64(total))
}
