package core

// FeatureDim 是单条评论特征向量的固定维度。
const FeatureDim = 7

// 特征下标，顺序即分类器训练时的列顺序，不可调整。
const (
	FeatReviewLen = iota
	FeatNounScore
	FeatPolarity
	FeatSubjectivity
	FeatLexicalCoverage
	FeatServiceRelevance
	FeatSlangSentiment
)

// FeatureNames 与 FeatureVector 下标一一对应。
var FeatureNames = [FeatureDim]string{
	"review_len",
	"noun_score",
	"polarity",
	"subjectivity",
	"lexical_coverage",
	"service_relevance",
	"slang_sentiment",
}

// FeatureVector 是评论的 7 维数值描述。
// 值类型（数组）保证写入 Item 之后不会被其他阶段原地修改。
type FeatureVector [FeatureDim]float64

func (v FeatureVector) ReviewLen() float64        { return v[FeatReviewLen] }
func (v FeatureVector) NounScore() float64        { return v[FeatNounScore] }
func (v FeatureVector) Polarity() float64         { return v[FeatPolarity] }
func (v FeatureVector) Subjectivity() float64     { return v[FeatSubjectivity] }
func (v FeatureVector) LexicalCoverage() float64  { return v[FeatLexicalCoverage] }
func (v FeatureVector) ServiceRelevance() float64 { return v[FeatServiceRelevance] }
func (v FeatureVector) SlangSentiment() float64   { return v[FeatSlangSentiment] }

// Values 返回特征值副本。
func (v FeatureVector) Values() [FeatureDim]float64 { return v }

// Names 返回特征名，顺序与 Values 一致。
func (FeatureVector) Names() [FeatureDim]string { return FeatureNames }

// PairRow 拼接一次比较的分类器输入：anchor 在前，contender 在后，共 2*FeatureDim 列。
func PairRow(anchor, contender FeatureVector) []float64 {
	row := make([]float64, 0, 2*FeatureDim)
	row = append(row, anchor[:]...)
	row = append(row, contender[:]...)
	return row
}
