package parser

import "math"

// Segmenter 按表头候选行把原始网格切成连续的 (表头, 数据) 块
type Segmenter struct {
	cfg   SegmenterConfig
	vocab []string // 规范化后的表头词汇表
}

// NewSegmenter 创建分块器
func NewSegmenter(cfg SegmenterConfig, vocab []string) *Segmenter {
	if cfg.ScanDepth <= 0 {
		cfg = DefaultSegmenterConfig()
	}
	if cfg.MinVocabHits <= 0 {
		cfg.MinVocabHits = DefaultSegmenterConfig().MinVocabHits
	}
	return &Segmenter{cfg: cfg, vocab: vocab}
}

// ScoreRow 单行表头得分
// 命中词汇 +TokenWeight，含 3 位以上数字串的单元格 -DigitPenalty，非空单元格 +DensityWeight；
// 非空单元格少于 2 个直接取 -Inf（失格）
func (s *Segmenter) ScoreRow(row []string) float64 {
	score, _ := s.scoreRow(row)
	return score
}

func (s *Segmenter) scoreRow(row []string) (float64, int) {
	nonEmpty := 0
	hits := 0
	digitCells := 0
	for _, cell := range row {
		if IsBlank(cell) {
			continue
		}
		nonEmpty++
		n := NormalizeLabel(cell)
		if ContainsAny(n, s.vocab) {
			hits++
		}
		if HasDigitRun(cell) {
			digitCells++
		}
	}
	if nonEmpty < 2 {
		return math.Inf(-1), hits
	}
	score := s.cfg.TokenWeight*float64(hits) -
		s.cfg.DigitPenalty*float64(digitCells) +
		s.cfg.DensityWeight*float64(nonEmpty)
	return score, hits
}

// Candidates 扫描范围内的表头候选行（按行号有序）
// 正分且词汇命中达到下限才入选（密集数据行光靠非空加分不够格）；
// 一个都没有时回退到得分最高的那一行，保证至少尝试一个块
func (s *Segmenter) Candidates(rows [][]string) []HeaderCandidate {
	limit := len(rows)
	if limit > s.cfg.ScanDepth {
		limit = s.cfg.ScanDepth
	}

	var candidates []HeaderCandidate
	bestRow := -1
	bestScore := math.Inf(-1)
	for i := 0; i < limit; i++ {
		score, hits := s.scoreRow(rows[i])
		if math.IsInf(score, -1) {
			continue
		}
		if score > bestScore {
			bestRow, bestScore = i, score
		}
		if score > 0 && hits >= s.cfg.MinVocabHits {
			candidates = append(candidates, HeaderCandidate{Row: i, Score: score})
		}
	}
	if len(candidates) == 0 {
		if bestRow < 0 {
			return nil
		}
		candidates = []HeaderCandidate{{Row: bestRow, Score: bestScore}}
	}

	return collapseNear(candidates)
}

// collapseNear 行距小于 2 的相邻候选合并，保留较早的一个
// 防止换行写成两行的表头被切成两个块
func collapseNear(candidates []HeaderCandidate) []HeaderCandidate {
	var out []HeaderCandidate
	for _, c := range candidates {
		if len(out) > 0 && c.Row-out[len(out)-1].Row < 2 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Segment 把网格切块：每个块的数据范围到下一个表头行或 sheet 末尾
// 尾部全空行裁剪后仍无数据的块丢弃
func (s *Segmenter) Segment(rows [][]string) []Block {
	candidates := s.Candidates(rows)
	if len(candidates) == 0 {
		return nil
	}

	var blocks []Block
	for i, c := range candidates {
		start := c.Row + 1
		end := len(rows)
		if i+1 < len(candidates) {
			end = candidates[i+1].Row
		}
		if start > end {
			continue
		}

		data := rows[start:end]
		for len(data) > 0 && rowBlank(data[len(data)-1]) {
			data = data[:len(data)-1]
		}
		if len(data) == 0 {
			continue
		}

		blocks = append(blocks, Block{
			HeaderRow: c.Row,
			Header:    rows[c.Row],
			Rows:      data,
		})
	}
	return blocks
}

// rowBlank 整行为空
func rowBlank(row []string) bool {
	for _, cell := range row {
		if !IsBlank(cell) {
			return false
		}
	}
	return true
}
