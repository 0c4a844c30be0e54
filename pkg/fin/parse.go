package fin

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	block1Re = regexp.MustCompile(`\{1:([^}]+)\}`)
	block2Re = regexp.MustCompile(`\{2:([^}]+)\}`)
	block3Re = regexp.MustCompile(`(?s)\{3:((?:\{[^}]*\})+)\}`)
	block4Re = regexp.MustCompile(`(?s)\{4:(.*?)-\}`)
	block5Re = regexp.MustCompile(`(?s)\{5:(.+?)\}\s*$`)

	uetrRe = regexp.MustCompile(`\{108:([^}]+)\}`)
	macRe  = regexp.MustCompile(`\{MAC:([^}]+)\}`)
	chkRe  = regexp.MustCompile(`\{CHK:([^}]+)\}`)

	// Block-4 fields are ":<tag>:<value>" with tag one or more digits plus
	// an optional letter (20, 32A, 77E, 451, ...). A value runs until the
	// next tag marker or the end of the block.
	fieldTagRe = regexp.MustCompile(`:(\d+[A-Z]?):`)

	valueDateRe = regexp.MustCompile(`^(\d{6})([A-Z]{3})([0-9.,]+)$`)
)

// Parse decodes a raw FIN message into its blocks, fields and projections.
// It never fails: anything it cannot find is simply left unset.
func Parse(raw string) *Message {
	m := &Message{Raw: raw, SequenceNumber: 1}

	if match := block1Re.FindStringSubmatch(raw); match != nil {
		m.Block1 = match[1]
	}
	if match := block2Re.FindStringSubmatch(raw); match != nil {
		m.Block2 = match[1]
	}
	if match := block3Re.FindStringSubmatch(raw); match != nil {
		m.Block3 = match[1]
		if sub := uetrRe.FindStringSubmatch(m.Block3); sub != nil {
			m.UETR = sub[1]
		}
	}
	if match := block4Re.FindStringSubmatch(raw); match != nil {
		m.Block4 = match[1]
		m.HasBlock4 = true
		m.Fields = scanFields(m.Block4)
	}
	if match := block5Re.FindStringSubmatch(raw); match != nil {
		m.Block5 = match[1]
		if sub := macRe.FindStringSubmatch(m.Block5); sub != nil {
			m.MAC = sub[1]
		}
		if sub := chkRe.FindStringSubmatch(m.Block5); sub != nil {
			m.Checksum = sub[1]
		}
	}

	m.project()
	m.Kind = m.classify()
	return m
}

// scanFields splits a block-4 body into ordered fields. Values keep
// embedded newlines; surrounding whitespace is stripped.
func scanFields(body string) []Field {
	locs := fieldTagRe.FindAllStringSubmatchIndex(body, -1)
	if locs == nil {
		return nil
	}
	fields := make([]Field, 0, len(locs))
	for i, loc := range locs {
		tag := body[loc[2]:loc[3]]
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		value := strings.TrimSpace(body[loc[1]:end])
		fields = append(fields, Field{Tag: tag, Value: value})
	}
	return fields
}

// project fills the convenience projections from the field map.
func (m *Message) project() {
	if v, ok := m.Field("20"); ok {
		m.TransactionReference = trimToken(v)
	}
	if v, ok := m.Field("32A"); ok {
		if sub := valueDateRe.FindStringSubmatch(v); sub != nil {
			m.ValueDate = sub[1]
			m.Currency = sub[2]
			m.Amount = sub[3]
		}
	}
	if v, ok := m.Field("34"); ok {
		if n, err := strconv.Atoi(trimToken(v)); err == nil && n > 0 {
			m.SequenceNumber = n
		}
	}
	if v, ok := m.Field("50K"); ok {
		m.OrderingCustomer = v
	}
	if v, ok := m.Field("59"); ok {
		m.Beneficiary = v
	}
}
