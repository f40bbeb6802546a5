package scorer

import (
	"context"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/feast"
	"github.com/rushteam/revrank/pkg/textutil"
)

// EntityReviewHash 是 Feast 中评论实体的 join key。
const EntityReviewHash = "review_hash"

// FeastBatch 从 Feast 在线存储读取上游预先物化的评论得分。
// 实体 key 为规范化文本的 SHA-1；存储中没有的评论取 Default。
type FeastBatch struct {
	Client  feast.Client
	Feature string // 特征引用，例如 "review_nlp:noun_score"
	Project string
	Default float64
}

func (s *FeastBatch) Name() string { return "feast:" + s.Feature }

func (s *FeastBatch) ScoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	rows := make([]map[string]string, len(texts))
	for i, t := range texts {
		rows[i] = map[string]string{EntityReviewHash: textutil.Key(t)}
	}
	resp, err := s.Client.GetOnlineFeatures(ctx, &feast.GetOnlineFeaturesRequest{
		Features:   []string{s.Feature},
		EntityRows: rows,
		Project:    s.Project,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Rows) != len(texts) {
		return nil, core.NewDomainError(core.ModuleScorer, core.ErrorCodeInternalError, "scorer: feast row count mismatch")
	}

	out := make([]float64, len(texts))
	for i, row := range resp.Rows {
		v, ok := row[s.Feature]
		if !ok {
			v = s.Default
		}
		out[i] = v
	}
	return out, nil
}

// Close 关闭底层 Feast 客户端。
func (s *FeastBatch) Close() error { return s.Client.Close() }
