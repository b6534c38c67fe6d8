package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"AddressBook/internal/history"
	"AddressBook/internal/model"
	pkgerrors "AddressBook/pkg/errors"
	"AddressBook/pkg/metrics"
)

// Undo 撤销最近一次操作，返回被撤销的那一项
func (s *ContactService) Undo(ctx context.Context) (history.Entry, error) {
	entry, ok := s.history.PopUndo()
	if !ok {
		metrics.RecordHistory(ctx, "undo", "empty")
		return nil, pkgerrors.NothingToUndo
	}

	inverse, err := s.revert(entry)
	if err != nil {
		s.history.PushUndo(entry)
		metrics.RecordHistory(ctx, "undo", "failed")
		s.log.Warn("undo failed", zap.String("op", entry.Op()), zap.Error(err))
		return nil, err
	}

	s.history.PushRedo(inverse)
	metrics.RecordHistory(ctx, "undo", "success")
	s.persist(ctx)
	return entry, nil
}

// Redo 重做最近一次被撤销的操作，返回被重做的操作本身
func (s *ContactService) Redo(ctx context.Context) (history.Entry, error) {
	entry, ok := s.history.PopRedo()
	if !ok {
		metrics.RecordHistory(ctx, "redo", "empty")
		return nil, pkgerrors.NothingToRedo
	}

	inverse, err := s.revert(entry)
	if err != nil {
		s.history.PushRedo(entry)
		metrics.RecordHistory(ctx, "redo", "failed")
		s.log.Warn("redo failed", zap.String("op", entry.Op()), zap.Error(err))
		return nil, err
	}

	s.history.PushUndo(inverse)
	metrics.RecordHistory(ctx, "redo", "success")
	s.persist(ctx)
	return inverse, nil
}

// revert 把 entry 描述的修改撤回，返回能把这次撤回再撤回的 entry
func (s *ContactService) revert(entry history.Entry) (history.Entry, error) {
	switch e := entry.(type) {
	case history.AddedRecord:
		snap, err := s.book.Remove(e.Name)
		if err != nil {
			return nil, err
		}
		return history.RemovedRecord{Record: snap}, nil

	case history.RemovedRecord:
		if err := s.book.Restore(e.Record); err != nil {
			return nil, err
		}
		return history.AddedRecord{Name: e.Record.Name}, nil

	case history.ChangedPhone:
		cur, err := s.book.GetRecord(e.Name)
		if err != nil {
			return nil, err
		}
		next := cur.Clone()
		next.Phone = e.Phone
		next.Birthday = e.Birthday
		next.Notes = e.Notes
		next.UpdatedAt = e.UpdatedAt
		if err := s.book.Replace(e.Name, next); err != nil {
			return nil, err
		}
		return history.ChangedPhone{
			Name:      cur.Name,
			Phone:     cur.Phone,
			Birthday:  cur.Birthday,
			Notes:     cur.Notes,
			UpdatedAt: cur.UpdatedAt,
		}, nil

	case history.Renamed:
		cur, err := s.book.GetRecord(e.NewName)
		if err != nil {
			return nil, err
		}
		next := cur.Clone()
		next.Name = e.OldName
		next.UpdatedAt = e.UpdatedAt
		if err := s.book.Replace(e.NewName, next); err != nil {
			return nil, err
		}
		return history.Renamed{OldName: e.NewName, NewName: e.OldName, UpdatedAt: cur.UpdatedAt}, nil

	case history.BulkAdded:
		removed := make([]model.Contact, 0, len(e.Names))
		for _, name := range e.Names {
			snap, err := s.book.Remove(name)
			if err != nil {
				s.log.Warn("skip contact while undoing import", zap.String("name", name), zap.Error(err))
				continue
			}
			removed = append(removed, snap)
		}
		return history.BulkRemoved{Records: removed}, nil

	case history.BulkRemoved:
		names := make([]string, 0, len(e.Records))
		for _, rec := range e.Records {
			if err := s.book.Restore(rec); err != nil {
				s.log.Warn("skip contact while redoing import", zap.String("name", rec.Name), zap.Error(err))
				continue
			}
			names = append(names, rec.Name)
		}
		return history.BulkAdded{Names: names}, nil

	default:
		return nil, fmt.Errorf("unknown history entry %T", entry)
	}
}
