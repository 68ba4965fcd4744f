package processor

import (
	"strings"

	"github.com/NextMind-AI/inbox-analytics/model"
)

// extractMessage validates the boundary fields of an inbound payload and
// builds the domain message. The timestamp is never defaulted.
func extractMessage(in InboundMessage) (model.Message, error) {
	channel, err := model.ParseChannel(in.Channel)
	if err != nil {
		return model.Message{}, err
	}

	sender := strings.TrimSpace(in.Sender)
	if sender == "" {
		return model.Message{}, &model.ValidationError{
			Field:  "sender",
			Reason: "sender is required",
			Err:    model.ErrMissingField,
		}
	}

	ts, err := model.ParseTimestamp(in.Timestamp)
	if err != nil {
		return model.Message{}, err
	}

	return model.Message{
		ID:        in.MessageUUID,
		Channel:   channel,
		Sender:    sender,
		Text:      in.Message,
		Timestamp: ts,
		Outgoing:  in.Outgoing,
		AgentID:   blankToNil(in.AgentID),
		Tag:       blankToNil(in.Tag),
	}, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func failureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case model.IsValidation(err):
		return "validation"
	default:
		return "store"
	}
}
