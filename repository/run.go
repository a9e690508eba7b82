package repository

import (
	"gorm.io/gorm"

	"photosync/model"
)

type RunRepository struct {
	gdb *gorm.DB
}

func NewRunRepository(gdb *gorm.DB) *RunRepository {
	return &RunRepository{gdb: gdb}
}

func (r *RunRepository) Save(report *model.Report) error {
	run := model.Run{
		Source:      report.Source,
		Destination: report.Destination,
		Scanned:     report.SourceFiles,
		Copied:      report.Copied,
		Duplicates:  report.Duplicates,
		BytesCopied: report.BytesCopied,
		Warnings:    len(report.Warnings),
		Failures:    len(report.CopyErrors),
		StartedAt:   report.StartedAt,
		DurationMS:  report.Duration.Milliseconds(),
	}

	return r.gdb.Create(&run).Error
}

func (r *RunRepository) GetRecent(limit int) ([]model.Run, error) {
	var runs []model.Run
	result := r.gdb.
		Order("started_at desc").
		Limit(limit).
		Find(&runs)

	return runs, result.Error
}

type Stats struct {
	Runs        int64
	Copied      int64
	BytesCopied int64
	Failures    int64
}

func (r *RunRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := r.gdb.Model(&model.Run{}).Count(&stats.Runs).Error; err != nil {
		return stats, err
	}

	row := r.gdb.Model(&model.Run{}).
		Select("COALESCE(SUM(copied), 0), COALESCE(SUM(bytes_copied), 0), COALESCE(SUM(failures), 0)").
		Row()
	if err := row.Scan(&stats.Copied, &stats.BytesCopied, &stats.Failures); err != nil {
		return stats, err
	}

	return stats, nil
}
