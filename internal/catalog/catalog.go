// Package catalog 多语言别名目录：规范字段 → 各语言表头关键词
// 导入期间只读；目录自身的维护归上层系统
package catalog

import (
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/parser"
)

// 动向取值的伪字段：目录行用它们扩展 到达/离开 代码词汇
const (
	FieldArrivalCode   parser.CanonicalField = "arrival_code"
	FieldDepartureCode parser.CanonicalField = "departure_code"
)

// Entry 一条目录记录（语言、字段、关键词）
type Entry struct {
	Lang    string
	Field   parser.CanonicalField
	Keyword string
}

// Catalog 按语言分组的字段关键词集合
type Catalog struct {
	languages map[string]map[parser.CanonicalField][]string
}

// Default 内置默认目录（es/fr/en）
// 某语言在外部目录里缺失或为空时，这里就是兜底
func Default() *Catalog {
	c := &Catalog{languages: make(map[string]map[parser.CanonicalField][]string)}
	for lang, fields := range defaultKeywords {
		entry := make(map[parser.CanonicalField][]string, len(fields))
		for f, kws := range fields {
			entry[f] = append([]string(nil), kws...)
		}
		c.languages[lang] = entry
	}
	return c
}

// Merge 叠加外部目录记录（通常来自存储层），在默认词汇之上追加
func (c *Catalog) Merge(entries []Entry) {
	for _, e := range entries {
		if e.Keyword == "" {
			continue
		}
		lang := e.Lang
		if lang == "" {
			lang = "xx"
		}
		if c.languages[lang] == nil {
			c.languages[lang] = make(map[parser.CanonicalField][]string)
		}
		c.languages[lang][e.Field] = append(c.languages[lang][e.Field], e.Keyword)
	}
}

// Keywords 跨语言取某字段的全部关键词（保持 语言名排序无关 的确定顺序）
func (c *Catalog) Keywords(field parser.CanonicalField) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, lang := range langOrder {
		out = appendKeywords(out, seen, c.languages[lang], field)
	}
	// 默认顺序之外的语言（外部目录新增的）
	for lang, fields := range c.languages {
		if knownLang(lang) {
			continue
		}
		out = appendKeywords(out, seen, fields, field)
	}
	return out
}

func appendKeywords(out []string, seen map[string]struct{}, fields map[parser.CanonicalField][]string, field parser.CanonicalField) []string {
	for _, kw := range fields[field] {
		n := parser.NormalizeLabel(kw)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, kw)
	}
	return out
}

var langOrder = []string{"es", "fr", "en"}

func knownLang(lang string) bool {
	for _, l := range langOrder {
		if l == lang {
			return true
		}
	}
	return false
}

// Lexicon 装配解析层需要的只读词汇表
func (c *Catalog) Lexicon() *parser.Lexicon {
	lex := &parser.Lexicon{
		Headers:        make(map[parser.CanonicalField][]string),
		ArrivalCodes:   make(map[string]struct{}),
		DepartureCodes: make(map[string]struct{}),
	}
	for _, f := range headerFields {
		lex.Headers[f] = c.Keywords(f)
	}
	for _, kw := range c.Keywords(FieldArrivalCode) {
		lex.ArrivalCodes[parser.NormalizeLabel(kw)] = struct{}{}
	}
	for _, kw := range c.Keywords(FieldDepartureCode) {
		lex.DepartureCodes[parser.NormalizeLabel(kw)] = struct{}{}
	}
	return lex
}

var headerFields = []parser.CanonicalField{
	parser.FieldReference, parser.FieldMovement, parser.FieldOrigin,
	parser.FieldDestination, parser.FieldFlight, parser.FieldDate,
	parser.FieldTime, parser.FieldCity, parser.FieldHotel,
	parser.FieldHolder, parser.FieldOperator, parser.FieldPax,
	parser.FieldAdults, parser.FieldChildren, parser.FieldInfants,
	parser.FieldObservation,
}

// 内置关键词（表头别名按语言分组；动向代码两组互斥）
var defaultKeywords = map[string]map[parser.CanonicalField][]string{
	"es": {
		parser.FieldReference:   {"referencia", "ref", "localizador", "reserva", "n reserva", "expediente", "bono"},
		parser.FieldMovement:    {"movimiento", "tipo", "sentido", "e/s"},
		parser.FieldOrigin:      {"origen", "procedencia", "aeropuerto origen"},
		parser.FieldDestination: {"destino", "aeropuerto destino"},
		parser.FieldFlight:      {"vuelo", "n vuelo", "num vuelo"},
		parser.FieldDate:        {"fecha", "dia"},
		parser.FieldTime:        {"hora", "hra"},
		parser.FieldCity:        {"ciudad", "localidad", "zona", "poblacion"},
		parser.FieldHotel:       {"hotel", "alojamiento", "establecimiento"},
		parser.FieldHolder:      {"titular", "nombre titular", "pasajero"},
		parser.FieldOperator:    {"operador", "touroperador", "t.o.", "agencia"},
		parser.FieldPax:         {"pax", "personas", "plazas", "n pax"},
		parser.FieldAdults:      {"adultos", "ad"},
		parser.FieldChildren:    {"ninos", "menores", "chd"},
		parser.FieldInfants:     {"bebes", "inf"},
		parser.FieldObservation: {"observaciones", "obs", "comentarios", "notas"},
		FieldArrivalCode:        {"LL", "LLEGADA", "E", "ENTRADA"},
		FieldDepartureCode:      {"S", "SALIDA"},
	},
	"fr": {
		parser.FieldReference:   {"reference", "dossier", "voucher"},
		parser.FieldMovement:    {"mouvement", "sens"},
		parser.FieldOrigin:      {"origine", "provenance"},
		parser.FieldDestination: {"destination"},
		parser.FieldFlight:      {"vol", "n vol"},
		parser.FieldDate:        {"date", "jour"},
		parser.FieldTime:        {"heure"},
		parser.FieldCity:        {"ville"},
		parser.FieldHotel:       {"hotel", "hebergement"},
		parser.FieldHolder:      {"titulaire"},
		parser.FieldOperator:    {"operateur", "agence"},
		parser.FieldPax:         {"passagers", "nb pax"},
		parser.FieldAdults:      {"adultes"},
		parser.FieldChildren:    {"enfants"},
		parser.FieldInfants:     {"bebes"},
		parser.FieldObservation: {"remarques", "commentaires"},
		FieldArrivalCode:        {"ARRIVEE"},
		FieldDepartureCode:      {"DEPART", "P", "PARTENZA"},
	},
	"en": {
		parser.FieldReference:   {"reference", "booking", "booking ref", "voucher"},
		parser.FieldMovement:    {"movement", "direction", "a/d"},
		parser.FieldOrigin:      {"origin", "from"},
		parser.FieldDestination: {"destination", "to"},
		parser.FieldFlight:      {"flight", "flight number", "flt"},
		parser.FieldDate:        {"date", "day"},
		parser.FieldTime:        {"time"},
		parser.FieldCity:        {"city", "resort"},
		parser.FieldHotel:       {"hotel", "accommodation"},
		parser.FieldHolder:      {"holder", "lead name", "pax name"},
		parser.FieldOperator:    {"operator", "tour operator", "agency"},
		parser.FieldPax:         {"pax", "passengers", "persons"},
		parser.FieldAdults:      {"adults"},
		parser.FieldChildren:    {"children"},
		parser.FieldInfants:     {"infants"},
		parser.FieldObservation: {"observation", "observations", "remark", "remarks", "comments", "notes"},
		FieldArrivalCode:        {"A", "ARRIVAL", "ARRIVO", "IN"},
		FieldDepartureCode:      {"D", "DEPARTURE", "OUT"},
	},
}
