package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/model"
)

// RowNormalizer 把整理后的行规范化为订单档案草稿
type RowNormalizer struct {
	lex *Lexicon
	cfg NormalizeConfig
}

// NewRowNormalizer 创建行规范化器
func NewRowNormalizer(lex *Lexicon, cfg NormalizeConfig) *RowNormalizer {
	if cfg.FuzzyThreshold == 0 {
		cfg.FuzzyThreshold = DefaultNormalizeConfig().FuzzyThreshold
	}
	if cfg.MovementPolicy == "" {
		cfg.MovementPolicy = MovementPolicyStrict
	}
	return &RowNormalizer{lex: lex, cfg: cfg}
}

// ResolvedColumns 整表一次性解析出的列映射
// 列结构是文件级的，逐字段解析一次后每行复用
type ResolvedColumns struct {
	Reference   []string // 按关键词优先级排列的候选列
	Movement    string
	Origin      string
	Destination string
	Flight      string
	Date        string
	Time        string
	City        []string // 优先级候选
	Hotel       string
	Operator    string
	Pax         string
	Adults      string
	Children    string
	Infants     string
	Holder      []string // 启发式顺序候选（已做排除过滤）
	HolderPair  [2]string
	Observation []string // 所有观察/备注列
}

// ResolveColumns 解析整表的列映射
func (n *RowNormalizer) ResolveColumns(table *TidiedTable) *ResolvedColumns {
	opts := ResolveOptions{FuzzyThreshold: n.cfg.FuzzyThreshold}
	one := func(fields ...CanonicalField) string {
		label, _ := ResolveColumn(table.Labels, n.lex.Keywords(fields...), opts)
		return label
	}

	cols := &ResolvedColumns{
		Reference:   n.candidateColumns(table.Labels, FieldReference),
		Movement:    one(FieldMovement),
		Origin:      one(FieldOrigin),
		Destination: one(FieldDestination),
		Flight:      one(FieldFlight),
		Date:        one(FieldDate),
		Time:        one(FieldTime),
		City:        n.candidateColumns(table.Labels, FieldCity),
		Operator:    one(FieldOperator),
		Pax:         one(FieldPax),
		Adults:      one(FieldAdults),
		Children:    one(FieldChildren),
		Infants:     one(FieldInfants),
	}
	cols.Hotel = n.pickHotelColumn(table)
	cols.Holder, cols.HolderPair = n.holderColumns(table.Labels)
	cols.Observation = n.observationColumns(table.Labels)
	return cols
}

// candidateColumns 按关键词优先级收集候选列（精确命中在前，子串命中在后）
func (n *RowNormalizer) candidateColumns(labels []string, field CanonicalField) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(label string) {
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}

	normLabels := make([]string, len(labels))
	for i, l := range labels {
		normLabels[i] = NormalizeLabel(l)
	}
	for _, kw := range n.lex.Keywords(field) {
		nkw := NormalizeLabel(kw)
		if nkw == "" {
			continue
		}
		for i, nl := range normLabels {
			if nl == nkw {
				add(labels[i])
			}
		}
	}
	for _, kw := range n.lex.Keywords(field) {
		nkw := NormalizeLabel(kw)
		if len([]rune(nkw)) < 3 {
			continue // 短关键词只参与精确档
		}
		for i, nl := range normLabels {
			if strings.Contains(nl, nkw) {
				add(labels[i])
			}
		}
	}
	return out
}

// pickHotelColumn 选酒店列
// 多个酒店相关列并存时，取抽样值中字母占比最高的那个（名称而非编号）
func (n *RowNormalizer) pickHotelColumn(table *TidiedTable) string {
	candidates := n.candidateColumns(table.Labels, FieldHotel)
	if len(candidates) == 0 {
		label, _ := ResolveColumn(table.Labels, n.lex.Keywords(FieldHotel),
			ResolveOptions{FuzzyThreshold: n.cfg.FuzzyThreshold})
		return label
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	best := candidates[0]
	bestScore := -1.0
	for _, label := range candidates {
		score := 0.0
		sampled := 0
		for _, row := range table.Rows {
			if sampled >= 10 {
				break
			}
			v := row[label]
			if IsBlank(v) {
				continue
			}
			sampled++
			score += alphaRatio(v)
		}
		if sampled > 0 {
			score /= float64(sampled)
		}
		if score > bestScore {
			best, bestScore = label, score
		}
	}
	return best
}

// holderColumns 预约持有人列的有序启发式
// (a) 持有人列（排除同时像操作商/客户的列）→ (b) 预订名/团名列（同样排除）
// → (c) 剩余客户列 → (d) 名+姓列拼接
func (n *RowNormalizer) holderColumns(labels []string) ([]string, [2]string) {
	operatorLike := func(label string) bool {
		nl := NormalizeLabel(label)
		for _, kw := range n.lex.Keywords(FieldOperator) {
			if strings.Contains(nl, NormalizeLabel(kw)) {
				return true
			}
		}
		return false
	}

	var ordered []string
	seen := make(map[string]struct{})
	add := func(label string) {
		if label == "" {
			return
		}
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		ordered = append(ordered, label)
	}

	for _, label := range n.candidateColumns(labels, FieldHolder) {
		if !operatorLike(label) {
			add(label)
		}
	}
	for _, label := range matchingLabels(labels, holderBookingKeywords) {
		if !operatorLike(label) {
			add(label)
		}
	}
	for _, label := range matchingLabels(labels, holderClientKeywords) {
		add(label)
	}

	var pair [2]string
	if first, ok := ResolveColumn(labels, holderFirstNameKeywords, ResolveOptions{}); ok {
		if last, ok := ResolveColumn(labels, holderLastNameKeywords, ResolveOptions{}); ok {
			pair = [2]string{first, last}
		}
	}
	return ordered, pair
}

// observationColumns 收集所有观察/备注列：精确命中或带数字后缀（obs2、remark3）
func (n *RowNormalizer) observationColumns(labels []string) []string {
	var out []string
	kws := make([]string, 0)
	for _, kw := range n.lex.Keywords(FieldObservation) {
		if nkw := NormalizeLabel(kw); nkw != "" {
			kws = append(kws, nkw)
		}
	}
	for _, label := range labels {
		nl := NormalizeLabel(label)
		for _, kw := range kws {
			if nl == kw || numberedSuffixMatch(nl, kw) {
				out = append(out, label)
				break
			}
		}
	}
	return out
}

func numberedSuffixMatch(label, kw string) bool {
	re, err := regexp.Compile(`^` + regexp.QuoteMeta(kw) + `\s*\d+$`)
	if err != nil {
		return false
	}
	return re.MatchString(label)
}

// matchingLabels 规范化包含匹配的列集合（保持列序）
func matchingLabels(labels []string, keywords []string) []string {
	var out []string
	for _, label := range labels {
		nl := NormalizeLabel(label)
		for _, kw := range keywords {
			if strings.Contains(nl, NormalizeLabel(kw)) {
				out = append(out, label)
				break
			}
		}
	}
	return out
}

// 持有人启发式的辅助词汇（不属于别名目录，固定）
var (
	holderBookingKeywords   = []string{"nombre reserva", "booking name", "grupo", "group", "nom reservation"}
	holderClientKeywords    = []string{"cliente", "client"}
	holderFirstNameKeywords = []string{"nombre", "first name", "prenom"}
	holderLastNameKeywords  = []string{"apellido", "apellidos", "last name", "surname", "nom"}
)

// NormalizeRow 规范化单行，返回草稿或跳过原因（空串表示成功）
func (n *RowNormalizer) NormalizeRow(table *TidiedTable, cols *ResolvedColumns, rowIdx int) (*model.BookingDossier, string) {
	row := table.Rows[rowIdx]
	var notes []string

	// 1. 业务引用：候选列按优先级取第一个非空；缺失是唯一无条件致命项
	reference := firstNonBlank(row, cols.Reference)
	if reference == "" {
		return nil, model.SkipMissingReference
	}

	d := &model.BookingDossier{
		Reference: reference,
		RowNo:     table.RowNos[rowIdx], // 原 sheet 行号，1 起
	}

	origin := strings.ToUpper(strings.TrimSpace(row[cols.Origin]))
	destination := strings.ToUpper(strings.TrimSpace(row[cols.Destination]))

	// 2. 行程方向：动向代码 → 多语言词汇映射
	// 表里根本没有动向列时未知是容忍的（两侧保持空/零）；
	// 有动向列但取值映射不出来时按策略处理：strict 跳过，lenient 按始发/目的回退推断
	code := NormalizeLabel(row[cols.Movement])
	movement := n.classifyMovement(code)
	if movement == model.MovementUnknown {
		if n.cfg.MovementPolicy == MovementPolicyLenient {
			switch {
			case origin != "" && destination == "":
				movement = model.MovementArrival
				notes = append(notes, "movement inferred from origin column")
			case destination != "" && origin == "":
				movement = model.MovementDeparture
				notes = append(notes, "movement inferred from destination column")
			}
		}
		if movement == model.MovementUnknown && cols.Movement != "" {
			return nil, model.SkipUnknownMovement
		}
	}
	d.Movement = movement

	// 3. 城市：候选列第一个非空，缺失容忍为空串
	d.City = firstNonBlank(row, cols.City)

	// 4. 日期 + 时间合成时间戳；解析失败不报错，降级为观察备注
	ts, note := composeDateTime(row[cols.Date], row[cols.Time])
	if note != "" {
		notes = append(notes, note)
	}

	// 5. 航班号
	flight := strings.ToUpper(strings.TrimSpace(row[cols.Flight]))

	// 6. 乘客数：直读列存在且含数字时优先，否则按 成人/儿童/婴儿 分项求和
	// 非数字与负数一律按 0，乘客数缺失不构成跳过
	pax := 0
	if direct := row[cols.Pax]; cols.Pax != "" && digitsRe.MatchString(direct) {
		pax = FirstDigits(direct)
	} else {
		pax = FirstDigits(row[cols.Adults]) + FirstDigits(row[cols.Children]) + FirstDigits(row[cols.Infants])
	}

	// 仅填充与行程方向一致的一侧
	switch movement {
	case model.MovementArrival:
		d.ArrivalTime = ts
		d.ArrivalFlight = flight
		d.PaxArrival = pax
		d.ArrivalAirport = origin
		if origin == "" && destination != "" {
			d.ArrivalAirport = destination
			notes = append(notes, "movement type contradicts populated airport columns")
		}
	case model.MovementDeparture:
		d.DepartureTime = ts
		d.DepartureFlight = flight
		d.PaxDeparture = pax
		d.DepartureAirport = destination
		if destination == "" && origin != "" {
			d.DepartureAirport = origin
			notes = append(notes, "movement type contradicts populated airport columns")
		}
	}

	// 7. 酒店名（实体解析/创建由上层完成）
	d.HotelName = strings.TrimSpace(row[cols.Hotel])

	// 8. 预约持有人
	d.HolderName = n.resolveHolder(row, cols)

	// 操作商
	d.TourOperator = strings.TrimSpace(row[cols.Operator])

	// 9. 观察备注聚合 + 10. 软不一致追加
	d.Observations = joinObservations(row, cols.Observation, notes)

	return d, ""
}

// classifyMovement 动向代码映射：到达/离开词汇互斥
func (n *RowNormalizer) classifyMovement(code string) model.MovementType {
	if code == "" {
		return model.MovementUnknown
	}
	if _, ok := n.lex.ArrivalCodes[code]; ok {
		return model.MovementArrival
	}
	if _, ok := n.lex.DepartureCodes[code]; ok {
		return model.MovementDeparture
	}
	return model.MovementUnknown
}

// resolveHolder 持有人解析：有序启发式里第一个取到非空文本的胜出
func (n *RowNormalizer) resolveHolder(row map[string]string, cols *ResolvedColumns) string {
	for _, label := range cols.Holder {
		if v := cleanName(row[label]); v != "" {
			return v
		}
	}
	if cols.HolderPair[0] != "" {
		first := cleanName(row[cols.HolderPair[0]])
		last := cleanName(row[cols.HolderPair[1]])
		full := strings.TrimSpace(first + " " + last)
		if full != "" {
			return full
		}
	}
	return ""
}

// cleanName 名称清理：裁剪并折叠空白
func cleanName(s string) string {
	if IsBlank(s) {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// 观察列里视同空值的占位符
var observationPlaceholders = map[string]struct{}{
	"0": {}, "-": {}, "nan": {}, "none": {}, "null": {},
}

// joinObservations 聚合去重的非平凡观察值，附加软不一致备注
func joinObservations(row map[string]string, obsCols []string, notes []string) string {
	var parts []string
	seen := make(map[string]struct{})
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, ok := observationPlaceholders[strings.ToLower(v)]; ok {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		parts = append(parts, v)
	}
	for _, label := range obsCols {
		add(row[label])
	}
	for _, note := range notes {
		add(note)
	}
	return strings.Join(parts, " | ")
}

// firstNonBlank 候选列里第一个非空值
func firstNonBlank(row map[string]string, labels []string) string {
	for _, label := range labels {
		if v := strings.TrimSpace(row[label]); !IsBlank(v) {
			return v
		}
	}
	return ""
}

// 日期与时间布局（按出现频率排序）
var dateLayouts = []string{
	"02/01/2006", "02-01-2006", "2006-01-02", "02/01/06", "2.1.2006",
	"2/1/2006", "02/01/2006 15:04", "2006-01-02 15:04:05",
}

var timeLayouts = []string{"15:04", "15:04:05", "15h04", "3:04 PM", "15.04"}

// composeDateTime 日期单元格与时间单元格合成时间戳
// 都在时合并；只有一个时单独解析；无法解析返回 nil 与一条软备注
func composeDateTime(dateCell, timeCell string) (*time.Time, string) {
	dateCell = strings.TrimSpace(dateCell)
	timeCell = strings.TrimSpace(timeCell)
	if IsBlank(dateCell) && IsBlank(timeCell) {
		return nil, ""
	}

	date, dateOK := parseDateCell(dateCell)
	clock, clockOK := parseTimeCell(timeCell)

	switch {
	case dateOK && clockOK:
		t := time.Date(date.Year(), date.Month(), date.Day(),
			clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
		return &t, ""
	case dateOK:
		// 日期可用但时间单元格有值却解析不了：保留日期，留软备注
		if !IsBlank(timeCell) {
			return &date, fmt.Sprintf("unparsable time %q", timeCell)
		}
		return &date, ""
	case clockOK && IsBlank(dateCell):
		return &clock, ""
	}
	return nil, fmt.Sprintf("unparsable date/time %q %q", dateCell, timeCell)
}

// parseDateCell 解析日期单元格，支持常见布局与 Excel 序列日期
func parseDateCell(s string) (time.Time, bool) {
	if IsBlank(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// Excel 序列日期（1900 体系，基准 1899-12-30）
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 20000 && serial < 80000 {
		base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		days := int(serial)
		frac := serial - float64(days)
		t := base.AddDate(0, 0, days).Add(time.Duration(math.Round(frac*24*3600)) * time.Second)
		return t, true
	}
	return time.Time{}, false
}

// parseTimeCell 解析时间单元格，支持常见布局与 Excel 日内小数
func parseTimeCell(s string) (time.Time, bool) {
	if IsBlank(s) {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if frac, err := strconv.ParseFloat(s, 64); err == nil && frac >= 0 && frac < 1 {
		secs := int(math.Round(frac * 24 * 3600))
		t := time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(secs) * time.Second)
		return t, true
	}
	return time.Time{}, false
}
