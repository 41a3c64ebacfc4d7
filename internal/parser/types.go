package parser

// CanonicalField 规范语义字段
// 所有异构表头最终都要映射到这组固定槽位上
type CanonicalField string

const (
	FieldReference   CanonicalField = "reference"
	FieldMovement    CanonicalField = "movement_type"
	FieldOrigin      CanonicalField = "origin"
	FieldDestination CanonicalField = "destination"
	FieldFlight      CanonicalField = "flight_number"
	FieldDate        CanonicalField = "date"
	FieldTime        CanonicalField = "time"
	FieldCity        CanonicalField = "city"
	FieldHotel       CanonicalField = "hotel"
	FieldHolder      CanonicalField = "reservation_holder"
	FieldOperator    CanonicalField = "tour_operator"
	FieldPax         CanonicalField = "passenger_count"
	FieldAdults      CanonicalField = "adults"
	FieldChildren    CanonicalField = "children"
	FieldInfants     CanonicalField = "infants"
	FieldObservation CanonicalField = "observation"
)

// SheetGrid 单个 sheet 的原始网格（无表头假设，第 0 行就是数据）
type SheetGrid struct {
	Name string
	Rows [][]string
}

// HeaderCandidate 表头候选行
type HeaderCandidate struct {
	Row   int
	Score float64
}

// Block 一个 (表头, 数据范围) 块
// 数据范围从表头下一行到下一个表头（或 sheet 末尾），尾部全空行已裁剪
type Block struct {
	HeaderRow int
	Header    []string
	Rows      [][]string
}

// TidiedTable 整理后的表：列标签唯一非空，行为 标签→单元格 映射
// RowNos 与 Rows 对齐，保留每行在原 sheet 中的行号（1 起），空行剔除后仍指向真实位置
type TidiedTable struct {
	Labels    []string
	Rows      []map[string]string
	RowNos    []int
	HeaderRow int // 原 sheet 中的表头行号（0 起）
}

// Lexicon 规范字段的多语言表头关键词与动向取值词汇
// 由外部别名目录装配，解析层只读
type Lexicon struct {
	Headers        map[CanonicalField][]string // 字段 → 表头关键词（未规范化原文）
	ArrivalCodes   map[string]struct{}         // 规范化后的到达代码
	DepartureCodes map[string]struct{}         // 规范化后的离开代码
}

// HeaderVocabulary 表头打分词汇表：所有字段关键词的并集（已规范化、去重）
func (l *Lexicon) HeaderVocabulary() []string {
	seen := make(map[string]struct{})
	var vocab []string
	for _, kws := range l.Headers {
		for _, kw := range kws {
			n := NormalizeLabel(kw)
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			vocab = append(vocab, n)
		}
	}
	return vocab
}

// Keywords 单个字段的关键词列表
func (l *Lexicon) Keywords(fields ...CanonicalField) []string {
	var kws []string
	for _, f := range fields {
		kws = append(kws, l.Headers[f]...)
	}
	return kws
}

// SegmenterConfig 分块器配置（权重可调，默认为参考行为）
type SegmenterConfig struct {
	ScanDepth     int     // 表头扫描行数上限
	TokenWeight   float64 // 命中词汇表加分
	DigitPenalty  float64 // 含 3 位以上数字串的单元格扣分
	DensityWeight float64 // 非空单元格加分
	MinVocabHits  int     // 候选资格的最低词汇命中数
}

// DefaultSegmenterConfig 默认分块配置
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		ScanDepth:     200,
		TokenWeight:   2.0,
		DigitPenalty:  0.25,
		DensityWeight: 0.15,
		MinVocabHits:  2,
	}
}

// MovementPolicy 未知动向处理策略
type MovementPolicy string

const (
	MovementPolicyStrict  MovementPolicy = "strict"  // 未知即跳过
	MovementPolicyLenient MovementPolicy = "lenient" // 按始发/目的列回退推断
)

// NormalizeConfig 行规范化配置
type NormalizeConfig struct {
	MovementPolicy MovementPolicy
	FuzzyThreshold float64 // 列名模糊匹配最低相似度
}

// DefaultNormalizeConfig 默认行规范化配置
func DefaultNormalizeConfig() NormalizeConfig {
	return NormalizeConfig{
		MovementPolicy: MovementPolicyStrict,
		FuzzyThreshold: 0.65,
	}
}
