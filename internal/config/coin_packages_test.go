package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCoinCatalog_Embedded(t *testing.T) {
	catalog, err := LoadCoinCatalog("")
	require.NoError(t, err)

	packages := catalog.List()
	require.NotEmpty(t, packages)
	assert.Equal(t, "starter", packages[0].ID)

	reader, err := catalog.Get("reader")
	require.NoError(t, err)
	assert.Equal(t, int64(525), reader.TotalCoins())
	assert.Equal(t, "4.99", reader.Price.StringFixed(2))

	_, err = catalog.Get("missing")
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestParseCoinCatalog_Rejects(t *testing.T) {
	cases := map[string]string{
		"duplicate id": `
packages:
  - {id: a, name: A, coins: 1, price: "1.00"}
  - {id: a, name: B, coins: 1, price: "1.00"}`,
		"bad price":  `packages: [{id: a, name: A, coins: 1, price: "abc"}]`,
		"zero price": `packages: [{id: a, name: A, coins: 1, price: "0"}]`,
		"zero coins": `packages: [{id: a, name: A, coins: 0, price: "1.00"}]`,
		"missing id": `packages: [{name: A, coins: 1, price: "1.00"}]`,
		"not yaml":   `packages: [`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCoinCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{
		App:   AppConfig{Environment: "production"},
		JWT:   JWTConfig{Secret: "your-secret-key-change-in-production"},
		Coins: CoinConfig{AuthorSharePercent: 100},
		KoFi:  KoFiConfig{CoinsPerUnit: 100},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "real"
	cfg.Database.Password = "pw"
	assert.NoError(t, cfg.Validate())

	cfg.Coins.AuthorSharePercent = 120
	assert.Error(t, cfg.Validate())
}
