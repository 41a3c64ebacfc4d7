package importer

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/catalog"
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/model"
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/parser"
)

// 整文件致命错误：两者都在任何行处理开始前返回，不产生部分报告
var (
	ErrUnreadableInput = errors.New("input container cannot be opened")
	ErrNoUsableBlock   = errors.New("no usable table block found in any sheet")
)

// HotelStore 酒店实体存储契约
// 创建前按规范化名称大小写不敏感精确匹配，重复 create-if-missing 不产生重复实体
type HotelStore interface {
	FindOrCreateHotel(name, city string) (*model.Hotel, error)
	SetHotelAddress(id int64, address string) error // 已有地址时不覆盖
}

// AddressLookup 酒店地址补全协作方（可选、尽力而为）
type AddressLookup interface {
	Lookup(ctx context.Context, name, city string) (string, bool)
}

// CatalogSource 别名目录来源（导入开始时读一次，只读）
type CatalogSource interface {
	LoadAliasEntries() ([]catalog.Entry, error)
}

// Options 导入选项
type Options struct {
	MovementPolicy parser.MovementPolicy
	FuzzyThreshold float64
	ScanDepth      int
	OnDuplicate    DuplicatePolicy
	Atomic         bool
	Snapshots      bool          // 报告是否附带逐行规范化快照
	GeoTimeout     time.Duration // 地址补全超时上限
}

// Coordinator 导入协调器：驱动 装载→分块→整理→解析→规范化→对账 全流程
type Coordinator struct {
	records RecordStore
	hotels  HotelStore
	geo     AddressLookup
	source  CatalogSource
	opts    Options
}

// NewCoordinator 创建导入协调器；geo 与 source 允许为 nil
func NewCoordinator(records RecordStore, hotels HotelStore, geo AddressLookup, source CatalogSource, opts Options) *Coordinator {
	if opts.GeoTimeout <= 0 {
		opts.GeoTimeout = 2 * time.Second
	}
	return &Coordinator{records: records, hotels: hotels, geo: geo, source: source, opts: opts}
}

// Import 对一个内存字节流执行完整导入，返回运行报告
// 单次请求内同步单趟执行；除两类整文件致命错误外总是返回报告
func (c *Coordinator) Import(ctx context.Context, data []byte, filename string) (*model.RunReport, error) {
	start := time.Now()
	report := &model.RunReport{
		Filename: filename,
		BatchID:  uuid.New().String(),
	}

	// 别名目录每次运行装载一次，外部目录叠加在内置默认之上
	cat := catalog.Default()
	if c.source != nil {
		if entries, err := c.source.LoadAliasEntries(); err == nil {
			cat.Merge(entries)
		}
	}
	lex := cat.Lexicon()

	grids := parser.LoadWorkbook(data, filename)
	if len(grids) == 0 {
		return nil, ErrUnreadableInput
	}
	report.Sheets = len(grids)

	segCfg := parser.DefaultSegmenterConfig()
	if c.opts.ScanDepth > 0 {
		segCfg.ScanDepth = c.opts.ScanDepth
	}
	segmenter := parser.NewSegmenter(segCfg, lex.HeaderVocabulary())

	normCfg := parser.DefaultNormalizeConfig()
	if c.opts.MovementPolicy != "" {
		normCfg.MovementPolicy = c.opts.MovementPolicy
	}
	if c.opts.FuzzyThreshold > 0 {
		normCfg.FuzzyThreshold = c.opts.FuzzyThreshold
	}
	normalizer := parser.NewRowNormalizer(lex, normCfg)

	var drafts []*model.BookingDossier
	hotelCache := make(map[string]*model.Hotel)

	for _, grid := range grids {
		for _, block := range segmenter.Segment(grid.Rows) {
			table := parser.Tidy(block)
			if table == nil {
				continue
			}
			report.Blocks++

			cols := normalizer.ResolveColumns(table)
			for i := range table.Rows {
				draft, reason := normalizer.NormalizeRow(table, cols, i)
				if reason != "" {
					report.Skipped = append(report.Skipped, model.SkipEntry{
						RowNo:       table.RowNos[i],
						SourceSheet: grid.Name,
						Reason:      reason,
					})
					continue
				}
				draft.SourceSheet = grid.Name
				draft.SourceFile = filename
				c.attachHotel(ctx, draft, hotelCache)
				drafts = append(drafts, draft)
			}
		}
	}

	if report.Blocks == 0 {
		return nil, ErrNoUsableBlock
	}

	reconciler := NewReconciler(c.records, ReconcileOptions{
		OnDuplicate: c.opts.OnDuplicate,
		Atomic:      c.opts.Atomic,
	})
	if err := reconciler.Reconcile(ctx, drafts, report); err != nil {
		return nil, err
	}

	if c.opts.Snapshots {
		report.Snapshots = drafts
	}
	report.Duration = time.Since(start)
	return report, nil
}

// attachHotel 解析或创建酒店实体，并做尽力而为的地址补全
// 补全失败只降级为 debug 日志，绝不向调用方冒泡
func (c *Coordinator) attachHotel(ctx context.Context, d *model.BookingDossier, cache map[string]*model.Hotel) {
	name := strings.TrimSpace(d.HotelName)
	if name == "" || c.hotels == nil {
		return
	}

	key := strings.ToLower(name)
	hotel, ok := cache[key]
	if !ok {
		var err error
		hotel, err = c.hotels.FindOrCreateHotel(name, d.City)
		if err != nil || hotel == nil {
			return
		}
		cache[key] = hotel

		if c.geo != nil && hotel.Address == "" {
			geoCtx, cancel := context.WithTimeout(ctx, c.opts.GeoTimeout)
			addr, found := c.geo.Lookup(geoCtx, name, d.City)
			cancel()
			if found && addr != "" {
				if err := c.hotels.SetHotelAddress(hotel.ID, addr); err == nil {
					hotel.Address = addr
				}
			} else {
				log.Printf("[debug] address lookup miss for hotel %q", name)
			}
		}
	}
	d.HotelID = hotel.ID
	d.HotelName = hotel.Name
}
