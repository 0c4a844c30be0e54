package fin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMT103 = "{1:F01TESTUS33XXXX0000000000}" +
	"{2:O1031234240107TESTDE33XXXX12345678}" +
	"{3:{108:UETR-12345-ABCDE}}" +
	"{4:\n" +
	":20:TEST-001\n" +
	":34:7\n" +
	":32A:240107USD10000,00\n" +
	":50K:/12345678\nACME CORP\n123 MAIN ST\n" +
	":59:/87654321\nBENEFICIARY GMBH\n" +
	"-}\n" +
	"{5:{MAC:0123456789ABCDEF}{CHK:0123456789AB}}"

func TestParseFullMessage(t *testing.T) {
	m := Parse(sampleMT103)

	t.Run("Blocks", func(t *testing.T) {
		assert.Equal(t, "F01TESTUS33XXXX0000000000", m.Block1)
		assert.Equal(t, "O1031234240107TESTDE33XXXX12345678", m.Block2)
		assert.Equal(t, "{108:UETR-12345-ABCDE}", m.Block3)
		assert.True(t, m.HasBlock4)
		assert.Equal(t, "{MAC:0123456789ABCDEF}{CHK:0123456789AB}", m.Block5)
	})

	t.Run("Projections", func(t *testing.T) {
		assert.Equal(t, "TEST-001", m.TransactionReference)
		assert.Equal(t, 7, m.SequenceNumber)
		assert.Equal(t, "240107", m.ValueDate)
		assert.Equal(t, "USD", m.Currency)
		assert.Equal(t, "10000,00", m.Amount)
		assert.Equal(t, "UETR-12345-ABCDE", m.UETR)
		assert.Equal(t, "0123456789ABCDEF", m.MAC)
		assert.Equal(t, "0123456789AB", m.Checksum)
		assert.True(t, m.HasTrailer())
	})

	t.Run("MultilineValues", func(t *testing.T) {
		ordering, ok := m.Field("50K")
		require.True(t, ok)
		assert.Equal(t, "/12345678\nACME CORP\n123 MAIN ST", ordering)
		assert.Equal(t, ordering, m.OrderingCustomer)

		beneficiary, ok := m.Field("59")
		require.True(t, ok)
		assert.Equal(t, "/87654321\nBENEFICIARY GMBH", beneficiary)
		assert.Equal(t, beneficiary, m.Beneficiary)
	})

	t.Run("FieldOrderPreserved", func(t *testing.T) {
		tags := make([]string, 0, len(m.Fields))
		for _, f := range m.Fields {
			tags = append(tags, f.Tag)
		}
		assert.Equal(t, []string{"20", "34", "32A", "50K", "59"}, tags)
	})

	t.Run("MsgType", func(t *testing.T) {
		assert.Equal(t, "103", m.MsgType())
		assert.Equal(t, KindMT103, m.Kind)
	})
}

func TestParseIsTotal(t *testing.T) {
	t.Run("EmptyInput", func(t *testing.T) {
		m := Parse("")
		assert.False(t, m.HasBlock4)
		assert.Empty(t, m.Fields)
		assert.Equal(t, 1, m.SequenceNumber)
		assert.Equal(t, KindUnknown, m.Kind)
	})

	t.Run("Garbage", func(t *testing.T) {
		m := Parse("not a swift message at all")
		assert.False(t, m.HasBlock4)
		assert.Equal(t, KindUnknown, m.Kind)
	})

	t.Run("MissingOptionalBlocks", func(t *testing.T) {
		m := Parse("{1:F01TEST}{2:O1031234}{4:\n:20:REF-1\n-}")
		assert.True(t, m.HasBlock4)
		assert.Empty(t, m.UETR)
		assert.False(t, m.HasTrailer())
		assert.Equal(t, "REF-1", m.TransactionReference)
	})

	t.Run("MissingSequenceDefaultsToOne", func(t *testing.T) {
		m := Parse("{1:F01TEST}{2:O1031234}{4:\n:20:REF-2\n-}")
		assert.Equal(t, 1, m.SequenceNumber)
	})

	t.Run("NonNumericSequenceDefaultsToOne", func(t *testing.T) {
		m := Parse("{1:F01TEST}{2:O1031234}{4:\n:20:REF-3\n:34:abc\n-}")
		assert.Equal(t, 1, m.SequenceNumber)
	})

	t.Run("MalformedValueDateLeavesSplitUnset", func(t *testing.T) {
		m := Parse("{1:F01TEST}{2:O1031234}{4:\n:32A:notadate\n-}")
		assert.Empty(t, m.ValueDate)
		assert.Empty(t, m.Currency)
		assert.Empty(t, m.Amount)
	})
}

func TestParseWhitespaceTolerance(t *testing.T) {
	// Fields in arbitrary order with extra blank lines and leading spaces
	// around values must all be recovered.
	raw := "{1:F01TEST}{2:O1031234}{4:\n\n" +
		":59:  BENEFICIARY  \n\n" +
		":32A:240107EUR500,25\n" +
		":20:   WS-001\n\n" +
		":34: 3 \n" +
		"-}"
	m := Parse(raw)

	assert.Equal(t, "WS-001", m.TransactionReference)
	assert.Equal(t, 3, m.SequenceNumber)
	assert.Equal(t, "EUR", m.Currency)
	assert.Equal(t, "BENEFICIARY", m.Beneficiary)
	assert.Len(t, m.Fields, 4)
}

func TestParseTransactionReferenceFirstToken(t *testing.T) {
	m := Parse("{1:F01TEST}{2:O1031234}{4:\n:20:REF-9 trailing words\n-}")
	assert.Equal(t, "REF-9", m.TransactionReference)
}

func TestClassify(t *testing.T) {
	t.Run("LoginEnvelope", func(t *testing.T) {
		m := Parse("{1:F01CLIENT}{2:I001MOCKSVRXXXXN}{4:\n:20:LOGIN\n:79:PLEASE\n-}")
		assert.Equal(t, KindLogin, m.Kind)
	})

	t.Run("LoginSubstringInNarrativeIsNotLogin", func(t *testing.T) {
		// An MT103 whose beneficiary mentions LOGIN must stay an MT103.
		raw := "{1:F01TEST}{2:O1031234}{4:\n" +
			":20:TEST-LOGIN-99\n:34:4\n:32A:240107USD1,00\n:59:LOGIN SERVICES LLC\n-}"
		m := Parse(raw)
		assert.Equal(t, KindMT103, m.Kind)
	})

	t.Run("Heartbeat", func(t *testing.T) {
		m := Parse("{1:F01CLIENT}{2:I001MOCKSVRXXXXN}{4:\n:20:HEARTBEAT\n-}")
		assert.Equal(t, KindHeartbeat, m.Kind)

		m = Parse("{1:F01CLIENT}{2:I001MOCKSVRXXXXN}{4:\n:20:ECHO\n-}")
		assert.Equal(t, KindHeartbeat, m.Kind)
	})

	t.Run("MT103ByBlockTwo", func(t *testing.T) {
		m := Parse("{1:F01TEST}{2:O1031234}{4:\n:20:X\n-}")
		assert.Equal(t, KindMT103, m.Kind)
	})

	t.Run("MT103ByValueDateField", func(t *testing.T) {
		m := Parse("{1:F01TEST}{2:O9991234}{4:\n:32A:240107USD1,00\n-}")
		assert.Equal(t, KindMT103, m.Kind)
	})

	t.Run("UnknownWithoutMarkers", func(t *testing.T) {
		m := Parse("{1:F01TEST}{2:O9991234}{4:\n:20:SOMETHING\n-}")
		assert.Equal(t, KindUnknown, m.Kind)
	})
}

func TestDetails(t *testing.T) {
	m := Parse(sampleMT103)
	details := m.Details()

	assert.Equal(t, "MT103", details["msg_type"])
	assert.Equal(t, "TEST-001", details["transaction_reference"])
	assert.Equal(t, 7, details["sequence_number"])
	assert.Equal(t, "USD", details["currency"])
	assert.Equal(t, "10000,00", details["amount"])
	assert.Equal(t, "UETR-12345-ABCDE", details["uetr"])

	// Absent projections leave no keys behind.
	bare := Parse("{1:F01TEST}{2:O1031234}{4:\n:20:X\n-}")
	bareDetails := bare.Details()
	assert.NotContains(t, bareDetails, "currency")
	assert.NotContains(t, bareDetails, "uetr")
	assert.NotContains(t, bareDetails, "mac")
}
