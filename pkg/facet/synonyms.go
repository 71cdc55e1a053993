package facet

// synonyms maps case-folded raw variants onto canonical facet values.
// Keys cover the Japanese script forms, common romanization drift, and
// legacy keys from earlier scraper revisions.
var synonyms = map[string]string{
	// blades
	"刀":        "katana",
	"かたな":      "katana",
	"catana":   "katana",
	"uchigatana": "katana",
	"打刀":       "katana",
	"太刀":       "tachi",
	"脇差":       "wakizashi",
	"脇指":       "wakizashi",
	"wakisashi": "wakizashi",
	"短刀":       "tanto",
	"tantou":   "tanto",
	"薙刀":       "naginata",
	"長巻":       "nagamaki",
	"槍":        "yari",
	"剣":        "ken",
	"小刀":       "kogatana",

	// fittings
	"鍔":            "tsuba",
	"tuba":         "tsuba",
	"目貫":           "menuki",
	"小柄":           "kozuka",
	"笄":            "kogai",
	"縁頭":           "fuchi-kashira",
	"fuchikashira": "fuchi-kashira",
	"fuchi kashira": "fuchi-kashira",
	"拵":            "koshirae",
	"koshirae (mounting)": "koshirae",

	// armor
	"兜":      "kabuto",
	"面頬":     "menpo",
	"mempo":  "menpo",
	"鎧":      "yoroi",
	"甲冑":     "yoroi",
	"armor":  "yoroi",
	"armour": "yoroi",
	"具足":     "gusoku",

	// certifications
	"特別重要刀剣":          "tokubetsu juyo",
	"tokubetsu juyo token": "tokubetsu juyo",
	"重要刀剣":            "juyo",
	"juyo token":      "juyo",
	"jūyō":            "juyo",
	"重要美術品":           "juyo bijutsuhin",
	"特別保存刀剣":          "tokubetsu hozon",
	"tokubetsu hozon token": "tokubetsu hozon",
	"tokuho":          "tokubetsu hozon",
	"保存刀剣":            "hozon",
	"hozon token":     "hozon",
	"重要文化財":           "juyo bunkazai",
	"国宝":              "kokuho",
	"nthk":            "nthk kanteisho",
	"kanteisho":       "nthk kanteisho",

	// periods
	"平安":          "heian",
	"鎌倉":          "kamakura",
	"南北朝":         "nanbokucho",
	"nambokucho":  "nanbokucho",
	"室町":          "muromachi",
	"桃山":          "momoyama",
	"azuchi-momoyama": "momoyama",
	"江戸":          "edo",
	"明治":          "meiji",
	"古刀":          "koto",
	"新刀":          "shinto",
	"新々刀":         "shinshinto",
	"shin-shinto": "shinshinto",
	"現代刀":         "gendaito",
	"新作刀":         "shinsakuto",

	// signature status
	"在銘":     "zaimei",
	"signed": "zaimei",
	"無銘":     "mumei",
	"unsigned": "mumei",
	"偽銘":     "gimei",
}

// bladeTypes, fittingTypes and armorTypes are the fixed membership sets
// behind the category buckets. An item type in none of them is "other".
var bladeTypes = map[string]bool{
	"katana":   true,
	"tachi":    true,
	"wakizashi": true,
	"tanto":    true,
	"naginata": true,
	"nagamaki": true,
	"yari":     true,
	"ken":      true,
	"kogatana": true,
}

var fittingTypes = map[string]bool{
	"tsuba":         true,
	"menuki":        true,
	"kozuka":        true,
	"kogai":         true,
	"fuchi-kashira": true,
	"koshirae":      true,
	"habaki":        true,
}

var armorTypes = map[string]bool{
	"kabuto": true,
	"menpo":  true,
	"yoroi":  true,
	"gusoku": true,
	"kote":   true,
}
