package scorer

// DefaultLexicon 返回内置的英文评论情感词典。
func DefaultLexicon() *Lexicon {
	return NewLexicon(defaultValence, defaultSubjective)
}

var defaultValence = map[string]float64{
	"good": 0.7, "great": 0.8, "excellent": 1, "amazing": 0.6, "awesome": 1, "nice": 0.6,
	"best": 1, "better": 0.5, "love": 0.5, "perfect": 1, "happy": 0.8, "satisfied": 0.5,
	"recommend": 0.4, "worth": 0.3, "fast": 0.2, "smooth": 0.4, "superb": 1, "fantastic": 0.4,
	"bad": -0.7, "worst": -1, "poor": -0.4, "terrible": -1, "horrible": -1, "awful": -1,
	"useless": -0.5, "waste": -0.2, "broken": -0.4, "slow": -0.3, "disappointed": -0.75,
	"disappointing": -0.6, "defective": -0.5, "cheap": 0.4, "fake": -0.5, "damaged": -0.5,
	"hate": -0.8, "problem": -0.3, "issue": -0.2, "return": -0.1, "late": -0.3,
}

var defaultSubjective = []string{
	"think", "feel", "believe", "seems", "really", "very", "quite", "totally", "honestly",
	"definitely", "probably", "maybe", "beautiful", "ugly", "comfortable", "stylish",
	"expected", "impressed", "worthy", "overpriced", "value",
}

// DefaultServiceKeywords 是与服务（物流、售后、商家）相关的关键词。
var DefaultServiceKeywords = []string{
	"delivery", "delivered", "shipping", "shipped", "courier", "packaging", "package", "packed",
	"seller", "service", "support", "refund", "replacement", "return", "exchange", "warranty",
	"installation", "technician", "customer", "care", "late", "on-time", "dispatch", "order",
}

// DefaultSlangLexicon 是并入 VADER 词典的俚语词条（VADER 量纲，约 [-4, 4]）。
// 表情符号由 VADER 自带的 emoji 描述词典处理。
var DefaultSlangLexicon = map[string]float64{
	"lit": 2.0, "dope": 2.1, "op": 2.5, "osm": 2.5, "awsm": 2.5, "gr8": 2.2, "lol": 1.8,
	"lmao": 2.0, "fab": 2.4, "kool": 1.9, "bakwas": -2.5, "bekar": -2.2, "faltu": -2.0,
	"meh": -1.0, "trash": -2.4, "sux": -2.0, "wtf": -2.4, "smh": -1.3, "ugh": -1.8,
}
