package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/syllabi/backend/internal/model"
)

func TestSkillExecutionRepository_ListByChatbot(t *testing.T) {
	db := newTestDB(t, &model.SkillExecution{})
	repo := NewSkillExecutionRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		execution := &model.SkillExecution{
			ExecutionID: fmt.Sprintf("exec-%d", i),
			SkillName:   "discord_send_message",
			ChatbotID:   "bot-1",
			Status:      "succeeded",
		}
		if err := repo.Create(ctx, execution); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	list, err := repo.ListByChatbot(ctx, "bot-1", 3)
	if err != nil {
		t.Fatalf("ListByChatbot failed: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("expected limit 3, got %d", len(list))
	}

	// limit 非法时兜底
	list, err = repo.ListByChatbot(ctx, "bot-1", -1)
	if err != nil {
		t.Fatalf("ListByChatbot with invalid limit failed: %v", err)
	}
	if len(list) != 5 {
		t.Errorf("expected all 5 records under fallback limit, got %d", len(list))
	}
}

func TestSkillExecutionRepository_CountByStatus(t *testing.T) {
	db := newTestDB(t, &model.SkillExecution{})
	repo := NewSkillExecutionRepository(db)
	ctx := context.Background()

	seed := []model.SkillExecution{
		{ExecutionID: "e1", SkillName: "discord_send_message", ChatbotID: "bot-1", Status: "succeeded"},
		{ExecutionID: "e2", SkillName: "discord_send_message", ChatbotID: "bot-1", Status: "succeeded"},
		{ExecutionID: "e3", SkillName: "discord_ban_user", ChatbotID: "bot-1", Status: "failed"},
		{ExecutionID: "e4", SkillName: "discord_send_message", ChatbotID: "bot-2", Status: "succeeded"},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	counts, err := repo.CountByStatus(ctx, "bot-1")
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts["succeeded"] != 2 || counts["failed"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestSkillExecutionRepository_GetByExecutionID(t *testing.T) {
	db := newTestDB(t, &model.SkillExecution{})
	repo := NewSkillExecutionRepository(db)
	ctx := context.Background()

	execution := &model.SkillExecution{
		ExecutionID: "exec-1",
		SkillName:   "discord_test_connection",
		Status:      "succeeded",
		Result:      `{"success":true}`,
		DurationMS:  120,
	}
	if err := repo.Create(ctx, execution); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByExecutionID(ctx, "exec-1")
	if err != nil {
		t.Fatalf("GetByExecutionID failed: %v", err)
	}
	if got.SkillName != "discord_test_connection" || got.DurationMS != 120 {
		t.Errorf("unexpected record: %+v", got)
	}
}
