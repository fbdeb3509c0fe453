package dataset

import (
	"math"
	"math/rand/v2"
	"time"

	"shampoo-demand-api/pkg/features"
	"shampoo-demand-api/pkg/models"
)

// イベント種別
const (
	EventNationalSale  = "National Sale"
	EventHoli          = "Holi"
	EventRakshaBandhan = "Raksha Bandhan"
	EventDiwali        = "Diwali"
	EventWeddingSeason = "Wedding Season"
	EventNormalDay     = "Normal Day"
)

// EventFactor 日付ごとのイベントと需要倍率
type EventFactor struct {
	Name       string
	Multiplier float64
	IsSale     bool
}

// GeneratorConfig 合成データ生成の設定
type GeneratorConfig struct {
	Start       time.Time
	Days        int
	Seed        uint64
	NoiseStdDev float64
}

// DefaultGeneratorConfig 2024-01-01から2年分（730日）
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Start:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:        730,
		Seed:        42,
		NoiseStdDev: 10,
	}
}

// IndianEventFactor インドの販促・祝祭カレンダーに基づくイベント判定
func IndianEventFactor(date time.Time) EventFactor {
	m, d := date.Month(), date.Day()

	// 共和国記念日・独立記念日・ガンディー生誕日前後のECセール
	if (m == time.January && d >= 24 && d <= 26) ||
		(m == time.August && d >= 13 && d <= 15) ||
		(m == time.October && d >= 1 && d <= 3) {
		return EventFactor{Name: EventNationalSale, Multiplier: 2.5, IsSale: true}
	}

	if m == time.March && d == 25 {
		return EventFactor{Name: EventHoli, Multiplier: 1.2}
	}
	if m == time.August && d == 19 {
		return EventFactor{Name: EventRakshaBandhan, Multiplier: 1.3}
	}
	if (m == time.October && d >= 29) || (m == time.November && d == 1) {
		return EventFactor{Name: EventDiwali, Multiplier: 1.5, IsSale: true}
	}

	switch m {
	case time.November, time.December, time.January, time.February, time.May, time.June:
		return EventFactor{Name: EventWeddingSeason, Multiplier: 1.15}
	}

	return EventFactor{Name: EventNormalDay, Multiplier: 1.0}
}

// SeasonalFactor 季節（夏・モンスーン・冬）と商品カテゴリによる需要倍率
func SeasonalFactor(date time.Time, category string) float64 {
	switch date.Month() {
	case time.March, time.April, time.May, time.June:
		switch category {
		case "Summer":
			return 1.6
		case "General":
			return 1.1
		}
	case time.July, time.August, time.September:
		switch category {
		case "Monsoon":
			return 1.5
		case "Beauty":
			return 0.9
		}
	case time.October, time.November, time.December, time.January, time.February:
		switch category {
		case "Summer":
			return 0.4
		case "Beauty":
			return 1.2
		case "Herbal":
			return 1.1
		}
	}
	return 1.0
}

// weekendFactor 日曜のまとめ買い、土曜の買い物
func weekendFactor(date time.Time) float64 {
	switch features.DayOfWeek(date) {
	case 6:
		return 1.25
	case 5:
		return 1.15
	}
	return 1.0
}

// Generate 商品 × 日付ごとに販売実績を合成する。同じSeedなら同じ結果
func Generate(catalog *Catalog, cfg GeneratorConfig) []models.SalesRecord {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	products := catalog.Products()
	records := make([]models.SalesRecord, 0, len(products)*cfg.Days)

	for _, p := range products {
		for i := 0; i < cfg.Days; i++ {
			date := cfg.Start.AddDate(0, 0, i)
			event := IndianEventFactor(date)
			seasonal := SeasonalFactor(date, p.Category)

			marketing := float64(1000 + rng.IntN(4000))
			price := p.BasePrice
			if event.IsSale {
				price = math.Trunc(p.BasePrice * 0.85)
				marketing *= 2
			} else if event.Name == EventWeddingSeason && p.Category == "Beauty" {
				marketing *= 1.5
			}

			// 量販ブランドは広告効果が小さい
			impact := marketing / 800
			if p.Brand == "Clinic Plus" {
				impact = marketing / 2000
			}

			sales := p.BaseDemand*(event.Multiplier*seasonal) + impact
			sales *= weekendFactor(date)
			sales += rng.NormFloat64() * cfg.NoiseStdDev

			units := int(sales)
			if units < 0 {
				units = 0
			}

			records = append(records, models.SalesRecord{
				Date:              date.Format(features.DateLayout),
				ProductName:       p.Name,
				Brand:             p.Brand,
				CategoryType:      p.Category,
				PriceInr:          price,
				MarketingSpendInr: marketing,
				EventType:         event.Name,
				UnitsSold:         units,
			})
		}
	}
	return records
}

// ToLabeled 学習用のラベル付きレコードへ変換
func ToLabeled(records []models.SalesRecord) []features.LabeledRecord {
	out := make([]features.LabeledRecord, len(records))
	for i, r := range records {
		out[i] = features.LabeledRecord{
			Date:              r.Date,
			ProductName:       r.ProductName,
			Brand:             r.Brand,
			CategoryType:      r.CategoryType,
			PriceInr:          r.PriceInr,
			MarketingSpendInr: r.MarketingSpendInr,
			EventType:         r.EventType,
		}
	}
	return out
}
