package importer

import (
	"context"
	"errors"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/model"
)

// RecordStore 规范记录存储契约：reference 是唯一身份键，命中即整条替换
type RecordStore interface {
	UpsertDossier(d *model.BookingDossier) (created bool, err error)
	DossierExists(reference string) (bool, error)
}

// AtomicStore 支持整批事务的存储（可选能力）
type AtomicStore interface {
	Atomic(fn func(RecordStore) error) error
}

// DuplicatePolicy 跨批次重复 reference 的处理策略
type DuplicatePolicy string

const (
	DuplicateOverwrite DuplicatePolicy = "overwrite" // 整条覆盖，后写胜出
	DuplicateSkip      DuplicatePolicy = "skip"      // 已存在则按跳过上报
)

// ReconcileOptions 对账选项
// Atomic 与逐行独立模式互斥，单次运行只取其一
type ReconcileOptions struct {
	OnDuplicate DuplicatePolicy
	Atomic      bool
}

// Reconciler 把草稿逐条 upsert 进记录存储，收集每行结局
type Reconciler struct {
	store RecordStore
	opts  ReconcileOptions
}

// NewReconciler 创建对账器
func NewReconciler(store RecordStore, opts ReconcileOptions) *Reconciler {
	if opts.OnDuplicate == "" {
		opts.OnDuplicate = DuplicateOverwrite
	}
	return &Reconciler{store: store, opts: opts}
}

// Reconcile 按行序对账，结果写入报告
// 逐行模式下单行失败只记为跳过，不中断其余行；取消只在行间生效
func (r *Reconciler) Reconcile(ctx context.Context, drafts []*model.BookingDossier, report *model.RunReport) error {
	if r.opts.Atomic {
		atomicStore, ok := r.store.(AtomicStore)
		if !ok {
			return errors.New("reconcile: atomic mode requested but store does not support transactions")
		}
		return atomicStore.Atomic(func(tx RecordStore) error {
			return reconcileRows(ctx, tx, drafts, r.opts, report, true)
		})
	}
	return reconcileRows(ctx, r.store, drafts, r.opts, report, false)
}

func reconcileRows(ctx context.Context, store RecordStore, drafts []*model.BookingDossier, opts ReconcileOptions, report *model.RunReport, failFast bool) error {
	for _, d := range drafts {
		if err := ctx.Err(); err != nil {
			return err
		}

		if opts.OnDuplicate == DuplicateSkip {
			exists, err := store.DossierExists(d.Reference)
			if err == nil && exists {
				report.Skipped = append(report.Skipped, model.SkipEntry{
					RowNo:       d.RowNo,
					SourceSheet: d.SourceSheet,
					Reason:      model.SkipDuplicateRef,
				})
				continue
			}
		}

		created, err := store.UpsertDossier(d)
		if err != nil {
			if failFast {
				return err
			}
			report.Skipped = append(report.Skipped, model.SkipEntry{
				RowNo:       d.RowNo,
				SourceSheet: d.SourceSheet,
				Reason:      model.SkipStoreError + ": " + err.Error(),
			})
			continue
		}
		if created {
			report.Created = append(report.Created, d.Reference)
		} else {
			report.Updated = append(report.Updated, d.Reference)
		}
	}
	return nil
}
