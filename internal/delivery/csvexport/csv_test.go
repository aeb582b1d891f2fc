package csvexport

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shelfscout/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAll(t *testing.T) {
	live := domain.NewProductRecord("B0TESTASIN")
	live.JAN = "4901234567894"
	live.Title = "今治タオル, 2枚組"
	live.RankDisplay = "#1,234"
	live.PriceDisplay = "¥2,000"
	live.PriceSource = domain.PriceSourceLive
	points := decimal.RequireFromString("1.5")
	fee := decimal.NewFromInt(10)
	live.PointsRate = &points
	live.FeeRate = &fee
	live.Seller = "Towel Shop"

	empty := domain.NewProductRecord("B0NOTHING0")

	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, []*domain.ProductRecord{live, empty}))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, utf8BOM))

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{
		"B0TESTASIN", "4901234567894", "今治タオル, 2枚組", "", "",
		"#1,234", "¥2,000", "live", "1.5%", "10%",
		"Towel Shop", "-", domain.ShippingUnavailable,
	}, rows[1])
	assert.Equal(t, []string{
		"B0NOTHING0", "", "", "", "",
		"-", "-", "none", "-", "-",
		"-", "-", domain.ShippingUnavailable,
	}, rows[2])
}

func TestWriteAll_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, nil))

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), utf8BOM))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRowMatchesHeader(t *testing.T) {
	assert.Len(t, Row(domain.NewProductRecord("B0TESTASIN")), len(Header))
}

func TestNewWriter_FlushesHeader(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewWriter(&buf)
	require.NoError(t, err)

	assert.Equal(t, utf8BOM+strings.Join(Header, ",")+"\n", buf.String())
}
