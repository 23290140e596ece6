package hedera

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestTransactionIdTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionIdTestSuite))
}

type TransactionIdTestSuite struct {
	suite.Suite
}

func (s *TransactionIdTestSuite) TestNormalizeSdkFormat() {
	out, err := NormalizeTransactionId("0.0.1234@1700000000.123456789")
	require.Nil(s.T(), err)
	require.Equal(s.T(), "0.0.1234-1700000000-123456789", out)
}

func (s *TransactionIdTestSuite) TestNormalizeMirrorFormatPassthrough() {
	out, err := NormalizeTransactionId("0.0.1234-1700000000-123456789")
	require.Nil(s.T(), err)
	require.Equal(s.T(), "0.0.1234-1700000000-123456789", out)
}

func (s *TransactionIdTestSuite) TestNormalizeTrimsWhitespace() {
	out, err := NormalizeTransactionId("  0.0.1234@1700000000.123456789 ")
	require.Nil(s.T(), err)
	require.Equal(s.T(), "0.0.1234-1700000000-123456789", out)
}

func (s *TransactionIdTestSuite) TestNormalizeRejectsMalformed() {
	for _, in := range []string{
		"",
		"1234",
		"0.0.1234",
		"0.0.1234@1700000000",
		"0.0.1234-1700000000",
		"abc@1700000000.123",
		"0.0.1234@1700000000.123.456",
	} {
		_, err := NormalizeTransactionId(in)
		require.ErrorIs(s.T(), err, ErrInvalidTransactionId, in)
	}
}

func (s *TransactionIdTestSuite) TestTinybarFromHbar() {
	require.Equal(s.T(), int64(100_000_000), TinybarFromHbar(1))
	require.Equal(s.T(), int64(50_000_000), TinybarFromHbar(0.5))
	require.Equal(s.T(), int64(20_000_000_000), TinybarFromHbar(200))
	// 0.1 is not exactly representable, rounding has to absorb that
	require.Equal(s.T(), int64(10_000_000), TinybarFromHbar(0.1))
	require.Equal(s.T(), int64(0), TinybarFromHbar(0))
}
