// Package feature 为每条评论计算 7 维特征向量。
//
// 词表与覆盖率以分组为边界：同一商品下的评论共享一份词表快照，
// 各组互不影响，可以并行计算。
package feature

import (
	"context"
	"fmt"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/pkg/textutil"
	"github.com/rushteam/revrank/scorer"
)

// Vocabulary 返回组内所有评论小写后按空白切分的去重 token 集合。
func Vocabulary(items []*core.Item) map[string]struct{} {
	vocab := make(map[string]struct{})
	for _, it := range items {
		for _, t := range textutil.LowerTokens(it.Text) {
			vocab[t] = struct{}{}
		}
	}
	return vocab
}

// Coverage 返回 text 的去重 token 数占组词表的比例。
// 词表为空时返回 0。
func Coverage(text string, vocab map[string]struct{}) float64 {
	if len(vocab) == 0 {
		return 0
	}
	distinct := textutil.Distinct(textutil.LowerTokens(text))
	return float64(len(distinct)) / float64(len(vocab))
}

// ExtractGroup 为一组评论写入特征向量。
//
// noun_score 通过一次批量调用获得；批量调用失败或返回长度不符时整组失败，
// 组内任何 item 都不会被写入半成品特征。
func ExtractGroup(ctx context.Context, items []*core.Item, set *scorer.Set) error {
	if len(items) == 0 {
		return nil
	}
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}

	nouns, err := set.Noun.ScoreBatch(ctx, texts)
	if err != nil {
		return core.WrapDomainError(core.ModuleFeature, core.ErrorCodeUnavailable,
			fmt.Sprintf("feature: %s batch", set.Noun.Name()), err)
	}
	if len(nouns) != len(items) {
		return core.NewDomainError(core.ModuleFeature, core.ErrorCodeInternalError,
			fmt.Sprintf("feature: %s returned %d scores for %d texts", set.Noun.Name(), len(nouns), len(items)))
	}

	vocab := Vocabulary(items)
	vectors := make([]core.FeatureVector, len(items))
	for i, it := range items {
		var v core.FeatureVector
		v[core.FeatReviewLen] = float64(len(textutil.Tokens(it.Text)))
		v[core.FeatNounScore] = nouns[i]
		v[core.FeatPolarity] = set.Polarity.Score(it.Text)
		v[core.FeatSubjectivity] = set.Subjectivity.Score(it.Text)
		v[core.FeatLexicalCoverage] = Coverage(it.Text, vocab)
		v[core.FeatServiceRelevance] = set.Service.Score(it.Text)
		v[core.FeatSlangSentiment] = set.Slang.Score(it.Text)
		vectors[i] = v
	}
	for i, it := range items {
		v := vectors[i]
		it.Features = &v
	}
	return nil
}
