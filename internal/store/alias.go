package store

import (
	"fmt"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/catalog"
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/parser"
)

// LoadAliasEntries 装载别名目录记录（导入开始时调用一次，只读）
// 表为空或某语言缺失都不报错，由内置默认词汇兜底
func (s *Store) LoadAliasEntries() ([]catalog.Entry, error) {
	rows, err := s.q.Query(`SELECT lang, field, keyword FROM alias_keywords ORDER BY lang, field, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load alias keywords: %w", err)
	}
	defer rows.Close()

	var entries []catalog.Entry
	for rows.Next() {
		var lang, field, keyword string
		if err := rows.Scan(&lang, &field, &keyword); err != nil {
			return nil, fmt.Errorf("failed to scan alias keyword: %w", err)
		}
		entries = append(entries, catalog.Entry{
			Lang:    lang,
			Field:   parser.CanonicalField(field),
			Keyword: keyword,
		})
	}
	return entries, rows.Err()
}
