package tasks

import (
	"testing"
	"time"

	"wagate_app_echo/internal/models"
)

func TestUintArg(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		key     string
		want    uint
		wantErr bool
	}{
		{"float64 from JSON", map[string]interface{}{"id": float64(7)}, "id", 7, false},
		{"int", map[string]interface{}{"id": 12}, "id", 12, false},
		{"uint", map[string]interface{}{"id": uint(3)}, "id", 3, false},
		{"missing", map[string]interface{}{}, "id", 0, true},
		{"string", map[string]interface{}{"id": "7"}, "id", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uintArg(tt.args, tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("uintArg() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("uintArg() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildScheduledTask(t *testing.T) {
	type args struct {
		TransactionID uint `json:"transaction_id"`
	}

	due := time.Now().Add(time.Hour)
	task, err := BuildScheduledTask(models.TaskActivateService, args{TransactionID: 9}, due, nil, models.ScheduledTaskTypeOneTime, 3)
	if err != nil {
		t.Fatalf("BuildScheduledTask failed: %v", err)
	}

	if task.TaskName != models.TaskActivateService {
		t.Errorf("TaskName = %q", task.TaskName)
	}
	if task.Status != models.ScheduledTaskStatusActive {
		t.Errorf("Status = %q, want active", task.Status)
	}
	if got := task.Arguments["transaction_id"]; got != float64(9) {
		t.Errorf("Arguments[transaction_id] = %v (%T), want 9 as float64", got, got)
	}
}
