package companion

import (
	"context"
	"fmt"

	"example.com/fitsync/internal/domain"
	"example.com/fitsync/internal/store/sqlite"
)

// CommandKind names the requests the companion device can send.
type CommandKind string

const (
	CommandSetActivity    CommandKind = "set_activity"
	CommandSaveWorkout    CommandKind = "save_workout"
	CommandGetActivity    CommandKind = "get_current_activity"
	CommandGetWorkoutData CommandKind = "get_workout_data"
	CommandDeleteActivity CommandKind = "delete_activity"
)

// Command is one inbound request. Day zero means the user's current program
// day.
type Command struct {
	Kind         CommandKind       `json:"kind"`
	Day          int               `json:"day,omitempty"`
	ActivityKind string            `json:"activity_kind,omitempty"`
	Comment      string            `json:"comment,omitempty"`
	Trainings    []CommandTraining `json:"trainings,omitempty"`
}

// CommandTraining is one exercise line item in a save_workout command.
type CommandTraining struct {
	ExerciseType     string `json:"exercise_type,omitempty"`
	CustomExerciseID string `json:"custom_exercise_id,omitempty"`
	Count            int    `json:"count"`
}

// ActivityData is the activity view returned to the device.
type ActivityData struct {
	Day           int               `json:"day"`
	Kind          string            `json:"kind,omitempty"`
	ExecutionMode string            `json:"execution_mode,omitempty"`
	Comment       string            `json:"comment,omitempty"`
	Trainings     []CommandTraining `json:"trainings,omitempty"`
}

// Reply answers one Command.
type Reply struct {
	Kind     CommandKind   `json:"kind"`
	Activity *ActivityData `json:"activity,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Handler applies companion commands to the local store. Mutations only mark
// records dirty; the next sync run uploads them.
type Handler struct {
	store     *sqlite.Store
	publisher *Publisher
	cfg       config
}

// NewHandler constructs a Handler. publisher may be nil; when set, the status
// tuple is republished after every mutating command.
func NewHandler(store *sqlite.Store, publisher *Publisher, opts ...Option) *Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{store: store, publisher: publisher, cfg: cfg}
}

// Handle executes one command and builds its reply. Errors are reported in
// the reply rather than dropped, so the device can show them.
func (h *Handler) Handle(ctx context.Context, cmd Command) Reply {
	reply := Reply{Kind: cmd.Kind}

	user, err := h.store.CurrentUser(ctx)
	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	if user == nil {
		reply.Error = "no signed-in user"
		return reply
	}

	day := cmd.Day
	if day == 0 {
		day = user.CurrentDay(h.cfg.now())
	}
	if day < 1 || day > domain.FinalDay {
		reply.Error = fmt.Sprintf("day %d out of range", day)
		return reply
	}

	switch cmd.Kind {
	case CommandGetActivity, CommandGetWorkoutData:
		act, err := h.store.GetActivity(ctx, user.ID, day)
		if err != nil {
			reply.Error = err.Error()
			return reply
		}
		reply.Activity = activityData(day, act)
		return reply

	case CommandSetActivity:
		err = h.mutate(ctx, user.ID, day, func(act *domain.DailyActivity) {
			act.Kind = domain.ActivityKind(cmd.ActivityKind)
			if cmd.Comment != "" {
				act.Comment = cmd.Comment
			}
		})
	case CommandSaveWorkout:
		err = h.mutate(ctx, user.ID, day, func(act *domain.DailyActivity) {
			act.Kind = domain.KindWorkout
			act.Comment = cmd.Comment
			act.Trainings = act.Trainings[:0]
			for i, tr := range cmd.Trainings {
				act.Trainings = append(act.Trainings, domain.Training{
					ExerciseType:     tr.ExerciseType,
					CustomExerciseID: tr.CustomExerciseID,
					Count:            tr.Count,
					SortOrder:        i,
				})
			}
			act.ActualCount = len(cmd.Trainings)
		})
	case CommandDeleteActivity:
		err = h.mutate(ctx, user.ID, day, func(act *domain.DailyActivity) {
			act.ShouldDelete = true
		})
	default:
		reply.Error = fmt.Sprintf("unknown command %q", cmd.Kind)
		return reply
	}

	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	if h.publisher != nil {
		h.publisher.Republish(ctx)
	}
	act, err := h.store.GetActivity(ctx, user.ID, day)
	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	reply.Activity = activityData(day, act)
	return reply
}

// mutate loads (or creates) the day's activity, applies fn, and persists it
// as dirty so the sync engine picks it up.
func (h *Handler) mutate(ctx context.Context, userID string, day int, fn func(*domain.DailyActivity)) error {
	now := h.cfg.now()
	act, err := h.store.GetActivity(ctx, userID, day)
	if err != nil {
		return err
	}
	if act == nil {
		act = &domain.DailyActivity{UserID: userID, Day: day, CreateDate: now.UTC()}
	}
	fn(act)
	act.MarkDirty(now)
	return h.store.SaveActivity(ctx, act)
}

func activityData(day int, act *domain.DailyActivity) *ActivityData {
	if act == nil || act.ShouldDelete {
		return &ActivityData{Day: day}
	}
	data := &ActivityData{
		Day:           act.Day,
		Kind:          string(act.Kind),
		ExecutionMode: string(domain.EffectiveExecution(act.Day, act.ExecutionMode)),
		Comment:       act.Comment,
	}
	for _, tr := range act.Trainings {
		data.Trainings = append(data.Trainings, CommandTraining{
			ExerciseType:     tr.ExerciseType,
			CustomExerciseID: tr.CustomExerciseID,
			Count:            tr.Count,
		})
	}
	return data
}
