// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package normalize

// Rule adds Tag when any pattern matches.
type Rule struct {
	Tag      string
	Patterns []string
}

// Taxonomy is an ordered list of rules for one dimension.
type Taxonomy struct {
	Name  string
	Rules []Rule
}

// Taxonomy names, in evaluation order.
const (
	TaxonomyCategory = "category"
	TaxonomyStyle    = "style"
	TaxonomyMaterial = "material"
	TaxonomySeason   = "season"
	TaxonomyFeature  = "feature"
	TaxonomyBrand    = "brand"
)

// Gender tags derived from the upstream genre.
const (
	TagWomen = "レディース"
	TagMen   = "メンズ"
)

// genderByGenre maps top-level fashion genres to a gender tag.
var genderByGenre = map[string]string{
	"100371": TagWomen,
	"551177": TagMen,
}

// DefaultTaxonomies returns the built-in taxonomies. Order matters: taxonomy
// tags are emitted in this order and survive truncation first.
func DefaultTaxonomies() []Taxonomy {
	return []Taxonomy{
		{Name: TaxonomyCategory, Rules: []Rule{
			{"ワンピース", []string{"ワンピース", "ドレス", "dress"}},
			{"トップス", []string{"トップス", "シャツ", "ブラウス", "tシャツ", "t-shirt", "カットソー", "ニット", "セーター", "パーカー"}},
			{"ボトムス", []string{"パンツ", "ズボン", "スラックス", "ジーンズ", "デニム", "チノ"}},
			{"スカート", []string{"スカート", "skirt"}},
			{"アウター", []string{"アウター", "コート", "ジャケット", "ブルゾン", "カーディガン"}},
			{"バッグ", []string{"バッグ", "鞄", "かばん", "リュック", "トート", "ショルダー"}},
			{"シューズ", []string{"シューズ", "靴", "スニーカー", "パンプス", "ブーツ", "サンダル"}},
			{"アクセサリー", []string{"アクセサリー", "ネックレス", "ピアス", "イヤリング", "ブレスレット"}},
		}},
		{Name: TaxonomyStyle, Rules: []Rule{
			{"カジュアル", []string{"カジュアル", "casual", "ラフ", "リラックス"}},
			{"フォーマル", []string{"フォーマル", "formal", "ビジネス", "オフィス", "スーツ"}},
			{"ストリート", []string{"ストリート", "street", "ヒップホップ", "スケーター"}},
			{"フェミニン", []string{"フェミニン", "feminine", "ガーリー", "可愛い", "かわいい", "レース", "フリル"}},
			{"モード", []string{"モード", "mode", "モダン", "シック", "ミニマル"}},
			{"ナチュラル", []string{"ナチュラル", "natural", "シンプル", "ベーシック", "無地"}},
			{"エレガント", []string{"エレガント", "elegant", "上品", "きれいめ", "大人"}},
			{"スポーティ", []string{"スポーツ", "sport", "アスレ", "ジム", "ランニング"}},
		}},
		{Name: TaxonomyMaterial, Rules: []Rule{
			{"コットン", []string{"コットン", "綿", "cotton"}},
			{"ポリエステル", []string{"ポリエステル", "polyester"}},
			{"デニム", []string{"デニム", "ジーンズ", "denim"}},
			{"ニット", []string{"ニット", "knit", "ウール", "wool"}},
			{"レザー", []string{"レザー", "革", "leather", "合皮"}},
			{"シルク", []string{"シルク", "silk", "絹"}},
			{"リネン", []string{"リネン", "麻", "linen"}},
		}},
		{Name: TaxonomySeason, Rules: []Rule{
			{"春夏", []string{"春夏", "春", "夏", "サマー", "summer", "スプリング", "spring"}},
			{"秋冬", []string{"秋冬", "秋", "冬", "ウィンター", "winter", "オータム", "autumn"}},
			{"オールシーズン", []string{"オールシーズン", "通年", "all season"}},
		}},
		{Name: TaxonomyFeature, Rules: []Rule{
			{"ストレッチ", []string{"ストレッチ", "stretch", "伸縮"}},
			{"撥水", []string{"撥水", "防水", "water"}},
			{"UV対策", []string{"uv", "紫外線"}},
			{"大きいサイズ", []string{"大きいサイズ", "ビッグサイズ", "plus size", "3l", "4l", "5l"}},
			{"小さいサイズ", []string{"小さいサイズ", "プチサイズ", "xs", "petite"}},
		}},
		{Name: TaxonomyBrand, Rules: []Rule{
			{"ユニクロ", []string{"ユニクロ", "uniqlo"}},
			{"GU", []string{"gu", "ジーユー"}},
			{"ZARA", []string{"zara", "ザラ"}},
			{"H&M", []string{"h&m", "エイチアンドエム"}},
			{"無印良品", []string{"無印", "muji"}},
		}},
	}
}

// StylePatterns lists the tags the diversity selector treats as style dimensions.
var StylePatterns = []string{
	"カジュアル", "フォーマル", "ストリート", "モード", "ナチュラル", "フェミニン", "クール",
	"エレガント", "スポーティ", "ガーリー", "シンプル", "ベーシック", "トレンド", "レトロ", "ヴィンテージ",
}

// CategoryTags returns the tag names of the category taxonomy, in order.
func CategoryTags() []string {
	for _, tx := range DefaultTaxonomies() {
		if tx.Name == TaxonomyCategory {
			out := make([]string, 0, len(tx.Rules))
			for _, r := range tx.Rules {
				out = append(out, r.Tag)
			}
			return out
		}
	}
	return nil
}
