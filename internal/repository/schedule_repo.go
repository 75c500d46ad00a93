package repository

import (
	"context"

	"gorm.io/gorm"

	"skincare/internal/domain"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

type scheduleEntryModel struct {
	ID           int64  `gorm:"column:id;primaryKey"`
	SpecialistID int64  `gorm:"column:specialist_id;not null;index:idx_schedule_specialist_day"`
	DayOfWeek    int    `gorm:"column:day_of_week;not null;index:idx_schedule_specialist_day"`
	StartTime    string `gorm:"column:start_time;type:varchar(5);not null"`
	EndTime      string `gorm:"column:end_time;type:varchar(5);not null"`
	Available    bool   `gorm:"column:available;not null"`
}

func (scheduleEntryModel) TableName() string { return "specialist_schedules" }

func toDomainScheduleEntry(m scheduleEntryModel) domain.ScheduleEntry {
	return domain.ScheduleEntry{
		ID:           m.ID,
		SpecialistID: m.SpecialistID,
		DayOfWeek:    m.DayOfWeek,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		Available:    m.Available,
	}
}

func toScheduleEntryModel(e *domain.ScheduleEntry) scheduleEntryModel {
	return scheduleEntryModel{
		ID:           e.ID,
		SpecialistID: e.SpecialistID,
		DayOfWeek:    e.DayOfWeek,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Available:    e.Available,
	}
}

func (r *ScheduleRepository) ListBySpecialist(ctx context.Context, specialistID int64) ([]domain.ScheduleEntry, error) {
	var rows []scheduleEntryModel
	err := r.db.WithContext(ctx).
		Where("specialist_id = ?", specialistID).
		Order("day_of_week, start_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainScheduleEntries(rows), nil
}

// ListForDay returns every entry of the day, available or not.
func (r *ScheduleRepository) ListForDay(ctx context.Context, specialistID int64, dayOfWeek int) ([]domain.ScheduleEntry, error) {
	var rows []scheduleEntryModel
	err := r.db.WithContext(ctx).
		Where("specialist_id = ? AND day_of_week = ?", specialistID, dayOfWeek).
		Order("start_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainScheduleEntries(rows), nil
}

func toDomainScheduleEntries(rows []scheduleEntryModel) []domain.ScheduleEntry {
	out := make([]domain.ScheduleEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainScheduleEntry(m))
	}
	return out
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*domain.ScheduleEntry, error) {
	var m scheduleEntryModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "schedule entry", id)
	}
	e := toDomainScheduleEntry(m)
	return &e, nil
}

func (r *ScheduleRepository) Create(ctx context.Context, e *domain.ScheduleEntry) error {
	m := toScheduleEntryModel(e)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	e.ID = m.ID
	return nil
}

func (r *ScheduleRepository) Update(ctx context.Context, e *domain.ScheduleEntry) error {
	m := toScheduleEntryModel(e)
	res := r.db.WithContext(ctx).
		Model(&scheduleEntryModel{ID: e.ID}).
		Select("day_of_week", "start_time", "end_time", "available").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "schedule entry", e.ID)
	}
	return nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&scheduleEntryModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "schedule entry", id)
	}
	return nil
}
