package server

import (
	"net/url"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/inbox-analytics/model"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// pagination reads limit and offset, clamping limit to maxPageSize.
func pagination(c fiber.Ctx) (limit, offset int) {
	limit = defaultPageSize
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = min(l, maxPageSize)
	}
	if o, err := strconv.Atoi(c.Query("offset")); err == nil && o > 0 {
		offset = o
	}
	return limit, offset
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// pathParam returns the unescaped route parameter. Conversation ids carry
// ':' and '+', which clients may percent-encode.
func pathParam(c fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func queryChannel(c fiber.Ctx) (model.Channel, bool, error) {
	raw := c.Query("channel")
	if raw == "" {
		return "", false, nil
	}
	ch, err := model.ParseChannel(raw)
	if err != nil {
		return "", false, err
	}
	return ch, true, nil
}

// listConversationsHandler handles GET /api/v1/conversations
func (s *Server) listConversationsHandler(c fiber.Ctx) error {
	channel, byChannel, err := queryChannel(c)
	if err != nil {
		return respondFailure(c, err, "Invalid channel")
	}
	customer := c.Query("customer")

	var openFilter *bool
	if raw := c.Query("open"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "INVALID_PARAMETER", "open must be a boolean", fiber.Map{"open": raw})
		}
		openFilter = &v
	}

	convs, err := s.conversations.All(c.Context())
	if err != nil {
		return respondFailure(c, err, "Failed to retrieve conversations")
	}

	views := make([]ConversationView, 0, len(convs))
	for _, conv := range convs {
		if customer != "" && conv.CustomerID != customer {
			continue
		}
		if byChannel && conv.Channel != channel {
			continue
		}
		if openFilter != nil && conv.IsOpen() != *openFilter {
			continue
		}
		views = append(views, newConversationView(conv))
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].OpenedAt.Equal(views[j].OpenedAt) {
			return views[i].ID < views[j].ID
		}
		return views[i].OpenedAt.After(views[j].OpenedAt)
	})

	limit, offset := pagination(c)
	return c.JSON(ConversationList{
		Conversations: page(views, limit, offset),
		Total:         len(views),
		Limit:         limit,
		Offset:        offset,
	})
}

// getConversationHandler handles GET /api/v1/conversations/:id
func (s *Server) getConversationHandler(c fiber.Ctx) error {
	id := pathParam(c, "id")
	conv, err := s.conversations.Get(c.Context(), id)
	if err != nil {
		return respondFailure(c, err, "Failed to retrieve conversation")
	}
	if conv == nil {
		return respondError(c, fiber.StatusNotFound, "NOT_FOUND", "Conversation not found", fiber.Map{"id": id})
	}
	return c.JSON(newConversationView(*conv))
}

// closeConversationHandler handles PUT /api/v1/conversations/:id/close.
// Closing twice keeps the first closed_at.
func (s *Server) closeConversationHandler(c fiber.Ctx) error {
	id := pathParam(c, "id")
	conv, err := s.conversations.Get(c.Context(), id)
	if err != nil {
		return respondFailure(c, err, "Failed to retrieve conversation")
	}
	if conv == nil {
		return respondError(c, fiber.StatusNotFound, "NOT_FOUND", "Conversation not found", fiber.Map{"id": id})
	}

	if conv.IsOpen() {
		if err := s.conversations.Close(c.Context(), id, s.now().UTC()); err != nil {
			return respondFailure(c, err, "Failed to close conversation")
		}
		log.Info().Str("conversation_id", id).Msg("Conversation closed")

		conv, err = s.conversations.Get(c.Context(), id)
		if err != nil {
			return respondFailure(c, err, "Failed to retrieve conversation")
		}
	}
	return c.JSON(newConversationView(*conv))
}

// listMessagesHandler handles GET /api/v1/messages
func (s *Server) listMessagesHandler(c fiber.Ctx) error {
	channel, byChannel, err := queryChannel(c)
	if err != nil {
		return respondFailure(c, err, "Invalid channel")
	}
	sender := c.Query("sender")

	msgs, err := s.events.All(c.Context())
	if err != nil {
		return respondFailure(c, err, "Failed to retrieve messages")
	}

	filtered := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if byChannel && m.Channel != channel {
			continue
		}
		if sender != "" && m.Sender != sender {
			continue
		}
		filtered = append(filtered, m)
	}
	// Newest first whatever order the store returns.
	sort.Slice(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID > b.ID
	})

	limit, offset := pagination(c)
	return c.JSON(MessageList{
		Messages: page(filtered, limit, offset),
		Total:    len(filtered),
		Limit:    limit,
		Offset:   offset,
	})
}

func (s *Server) channelInfo(ch model.Channel) ChannelInfo {
	return ChannelInfo{
		Name:              ch,
		DisplayName:       ch.DisplayName(),
		DeliveryAvailable: s.dispatcher != nil && s.dispatcher.Configured(ch),
	}
}

// listChannelsHandler handles GET /api/v1/channels
func (s *Server) listChannelsHandler(c fiber.Ctx) error {
	channels := model.Channels()
	infos := make([]ChannelInfo, 0, len(channels))
	for _, ch := range channels {
		infos = append(infos, s.channelInfo(ch))
	}
	return c.JSON(infos)
}

func channelNotFound(c fiber.Ctx) error {
	return respondError(c, fiber.StatusNotFound, "NOT_FOUND", "Channel not found", fiber.Map{"name": c.Params("name")})
}

// getChannelHandler handles GET /api/v1/channels/:name
func (s *Server) getChannelHandler(c fiber.Ctx) error {
	ch, err := model.ParseChannel(c.Params("name"))
	if err != nil {
		return channelNotFound(c)
	}
	return c.JSON(s.channelInfo(ch))
}

// channelStatsHandler handles GET /api/v1/channels/:name/stats
func (s *Server) channelStatsHandler(c fiber.Ctx) error {
	ch, err := model.ParseChannel(c.Params("name"))
	if err != nil {
		return channelNotFound(c)
	}

	convs, err := s.conversations.All(c.Context())
	if err != nil {
		return respondFailure(c, err, "Failed to retrieve conversations")
	}
	msgs, err := s.events.All(c.Context())
	if err != nil {
		return respondFailure(c, err, "Failed to retrieve messages")
	}

	stats := ChannelStats{Channel: ch}
	var frtSum, frtCount int64
	for _, conv := range convs {
		if conv.Channel != ch {
			continue
		}
		stats.Conversations++
		if conv.IsOpen() {
			stats.OpenConversations++
		}
		if frt, ok := conv.FRTMinutes(); ok {
			frtSum += frt
			frtCount++
		}
	}
	if frtCount > 0 {
		avg := float64(frtSum) / float64(frtCount)
		stats.FRTAvgMinutes = &avg
	}
	for _, m := range msgs {
		if m.Channel != ch {
			continue
		}
		stats.Messages++
		if m.Outgoing {
			stats.Outbound++
		} else {
			stats.Inbound++
		}
	}

	return c.JSON(stats)
}
