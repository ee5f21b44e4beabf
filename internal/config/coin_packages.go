package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed coin_packages.yaml
var defaultCoinPackages []byte

var ErrPackageNotFound = errors.New("coin package not found")

// CoinPackage là một gói coin có thể mua
type CoinPackage struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Coins int64           `json:"coins"`
	Bonus int64           `json:"bonus"`
	Price decimal.Decimal `json:"price"`
}

// TotalCoins = coins + bonus
func (p CoinPackage) TotalCoins() int64 {
	return p.Coins + p.Bonus
}

type rawCatalog struct {
	Packages []struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Coins int64  `yaml:"coins"`
		Bonus int64  `yaml:"bonus"`
		Price string `yaml:"price"`
	} `yaml:"packages"`
}

// CoinCatalog giữ danh sách gói theo thứ tự khai báo
type CoinCatalog struct {
	packages []CoinPackage
	byID     map[string]CoinPackage
}

// LoadCoinCatalog đọc catalog từ file (nếu path != "") hoặc bản embedded
func LoadCoinCatalog(path string) (*CoinCatalog, error) {
	data := defaultCoinPackages
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read coin packages: %w", err)
		}
		data = b
	}
	return ParseCoinCatalog(data)
}

func ParseCoinCatalog(data []byte) (*CoinCatalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse coin packages: %w", err)
	}

	catalog := &CoinCatalog{byID: make(map[string]CoinPackage, len(raw.Packages))}
	for _, p := range raw.Packages {
		if p.ID == "" {
			return nil, fmt.Errorf("coin package without id")
		}
		if _, dup := catalog.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate coin package %q", p.ID)
		}
		if p.Coins <= 0 || p.Bonus < 0 {
			return nil, fmt.Errorf("coin package %q: invalid coin amount", p.ID)
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("coin package %q: invalid price: %w", p.ID, err)
		}
		if !price.IsPositive() {
			return nil, fmt.Errorf("coin package %q: price must be positive", p.ID)
		}

		pkg := CoinPackage{ID: p.ID, Name: p.Name, Coins: p.Coins, Bonus: p.Bonus, Price: price}
		catalog.packages = append(catalog.packages, pkg)
		catalog.byID[p.ID] = pkg
	}

	return catalog, nil
}

func (c *CoinCatalog) List() []CoinPackage {
	out := make([]CoinPackage, len(c.packages))
	copy(out, c.packages)
	return out
}

func (c *CoinCatalog) Get(id string) (CoinPackage, error) {
	p, ok := c.byID[id]
	if !ok {
		return CoinPackage{}, ErrPackageNotFound
	}
	return p, nil
}
