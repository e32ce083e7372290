package sync

import (
	"example.com/fitsync/internal/api"
	"example.com/fitsync/internal/domain"
)

// Conversions between store records and wire payloads. Day numbers switch to
// the server's external numbering here and nowhere else.

func activityPayload(snap domain.ActivitySnapshot) api.ActivityPayload {
	trainings := make([]api.TrainingPayload, 0, len(snap.Trainings))
	for _, tr := range snap.Trainings {
		trainings = append(trainings, api.TrainingPayload{
			ExerciseType:     tr.ExerciseType,
			CustomExerciseID: tr.CustomExerciseID,
			Count:            tr.Count,
			SortOrder:        tr.SortOrder,
		})
	}
	return api.ActivityPayload{
		Day:           domain.ExternalDay(snap.Day),
		Kind:          string(snap.Kind),
		PlannedCount:  snap.PlannedCount,
		ActualCount:   snap.ActualCount,
		ExecutionMode: string(snap.ExecutionMode),
		Comment:       snap.Comment,
		Trainings:     trainings,
		CreateDate:    api.FormatServerTime(snap.CreateDate),
		ModifyDate:    api.FormatServerTime(snap.ModifyDate),
	}
}

func activityFromPayload(userID string, p api.ActivityPayload) domain.DailyActivity {
	var trainings []domain.Training
	for _, tr := range p.Trainings {
		trainings = append(trainings, domain.Training{
			ExerciseType:     tr.ExerciseType,
			CustomExerciseID: tr.CustomExerciseID,
			Count:            tr.Count,
			SortOrder:        tr.SortOrder,
		})
	}
	return domain.DailyActivity{
		UserID:        userID,
		Day:           domain.InternalDay(p.Day),
		Kind:          domain.ActivityKind(p.Kind),
		PlannedCount:  p.PlannedCount,
		ActualCount:   p.ActualCount,
		ExecutionMode: domain.ExecutionMode(p.ExecutionMode),
		Comment:       p.Comment,
		Trainings:     trainings,
		CreateDate:    api.ParseServerTime(p.CreateDate),
		ModifyDate:    p.ModifyTime(),
	}
}

// progressPayload skips slots marked for deletion; those are removed with a
// dedicated photo delete call before the upsert.
func progressPayload(snap domain.ProgressSnapshot) api.ProgressPayload {
	var photos []api.ProgressPhotoPayload
	for _, p := range snap.Photos {
		switch {
		case p.MarkedForDeletion:
		case len(p.PendingUpload) > 0:
			photos = append(photos, api.ProgressPhotoPayload{Kind: string(p.Kind), Image: p.PendingUpload})
		case p.RemoteURL != "":
			photos = append(photos, api.ProgressPhotoPayload{Kind: string(p.Kind), URL: p.RemoteURL})
		}
	}
	return api.ProgressPayload{
		Day:        domain.ExternalDay(snap.Day),
		Weight:     snap.Weight,
		PullUps:    snap.PullUps,
		PushUps:    snap.PushUps,
		Squats:     snap.Squats,
		Photos:     photos,
		CreateDate: api.FormatServerTime(snap.CreateDate),
		ModifyDate: api.FormatServerTime(snap.ModifyDate),
	}
}

func progressFromPayload(userID string, p api.ProgressPayload) domain.ProgressRecord {
	return domain.ProgressRecord{
		UserID:     userID,
		Day:        domain.InternalDay(p.Day),
		Weight:     p.Weight,
		PullUps:    p.PullUps,
		PushUps:    p.PushUps,
		Squats:     p.Squats,
		Photos:     photosFromPayload(p.Photos),
		CreateDate: api.ParseServerTime(p.CreateDate),
		ModifyDate: p.ModifyTime(),
	}
}

func photosFromPayload(photos []api.ProgressPhotoPayload) []domain.ProgressPhoto {
	var out []domain.ProgressPhoto
	for _, p := range photos {
		if p.URL == "" {
			continue
		}
		out = append(out, domain.ProgressPhoto{
			Kind:      domain.PhotoKind(p.Kind),
			RemoteURL: p.URL,
		})
	}
	return out
}

func exercisePayload(snap domain.ExerciseSnapshot) api.ExercisePayload {
	return api.ExercisePayload{
		ID:         snap.ID,
		Name:       snap.Name,
		ImageID:    snap.ImageID,
		Hidden:     snap.Hidden,
		CreateDate: api.FormatServerTime(snap.CreateDate),
		ModifyDate: api.FormatServerTime(snap.ModifyDate),
	}
}

func exerciseFromPayload(userID string, p api.ExercisePayload) domain.CustomExercise {
	return domain.CustomExercise{
		ID:         p.ID,
		UserID:     userID,
		Name:       p.Name,
		ImageID:    p.ImageID,
		Hidden:     p.Hidden,
		CreateDate: api.ParseServerTime(p.CreateDate),
		ModifyDate: p.ModifyTime(),
	}
}
