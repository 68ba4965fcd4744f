package analytics

import (
	"bytes"
	"encoding/json"

	"github.com/NextMind-AI/inbox-analytics/model"
)

// Counts splits a message count by direction.
type Counts struct {
	In  int `json:"in"`
	Out int `json:"out"`
}

func (c *Counts) add(outgoing bool) {
	if outgoing {
		c.Out++
	} else {
		c.In++
	}
}

// ChannelCounts holds one Counts per channel. It always carries every
// channel and encodes them in canonical channel order.
type ChannelCounts map[model.Channel]Counts

func newChannelCounts() ChannelCounts {
	cc := make(ChannelCounts, len(model.Channels()))
	for _, ch := range model.Channels() {
		cc[ch] = Counts{}
	}
	return cc
}

func (cc ChannelCounts) add(ch model.Channel, outgoing bool) {
	c, ok := cc[ch]
	if !ok {
		return
	}
	c.add(outgoing)
	cc[ch] = c
}

func (cc ChannelCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ch := range model.Channels() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(ch.String())
		val, err := json.Marshal(cc[ch])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// General covers the whole history.
type General struct {
	FRTAvgMinutes      *float64      `json:"frt_avg_min"`
	ResponseRate24h    *float64      `json:"pct_respondido_24h"`
	ConversationsTotal int           `json:"conversations_total"`
	InboundTotal       int           `json:"mensajes_totales_in"`
	OutboundTotal      int           `json:"mensajes_totales_out"`
	ByChannel          ChannelCounts `json:"por_canal_total"`
}

type Window struct {
	From string `json:"desde_lunes"`
	To   string `json:"hasta_domingo"`
	Zone string `json:"zona"`
}

// Weekly covers one Monday to Sunday window of the reference zone.
type Weekly struct {
	Window          Window                   `json:"ventana"`
	FRTAvgMinutes   *float64                 `json:"frt_avg_min"`
	ResponseRate24h *float64                 `json:"pct_respondido_24h"`
	Conversations   int                      `json:"conversations"`
	InboundTotal    int                      `json:"mensajes_totales_in"`
	OutboundTotal   int                      `json:"mensajes_totales_out"`
	ByChannel       ChannelCounts            `json:"por_canal"`
	ByDay           map[string]Counts        `json:"mensajes_por_dia"`
	ByDayByChannel  map[string]ChannelCounts `json:"mensajes_por_dia_por_canal"`
}

// Delta compares one metric across two consecutive weeks.
type Delta struct {
	Previous *float64 `json:"semana_anterior"`
	Current  *float64 `json:"semana_actual"`
	Change   *float64 `json:"cambio_porcentual"`
}

type Comparison struct {
	Inbound         Delta `json:"mensajes_totales_in"`
	Outbound        Delta `json:"mensajes_respondidos"`
	FRTAvgMinutes   Delta `json:"tiempo_promedio_respuesta_min"`
	ResponseRate24h Delta `json:"tasa_respuesta_24h"`
	Conversations   Delta `json:"conversaciones"`
}

type Dashboard struct {
	General      General    `json:"general"`
	PreviousWeek Weekly     `json:"semana_anterior"`
	CurrentWeek  Weekly     `json:"semana_actual"`
	Comparison   Comparison `json:"comparativa_semanal"`
}
