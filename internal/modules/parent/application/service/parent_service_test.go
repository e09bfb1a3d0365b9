package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"ChatEduca/internal/modules/parent/application/dto/respond"
	"ChatEduca/internal/modules/parent/domain/entity"
	"ChatEduca/internal/modules/parent/infrastructure/persistence"
	userEntity "ChatEduca/internal/modules/user/domain/entity"
	userPersistence "ChatEduca/internal/modules/user/infrastructure/persistence"
	"ChatEduca/internal/testutil"
	"ChatEduca/pkg/xerr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type parentFixture struct {
	svc     ParentService
	db      *gorm.DB
	parent  *userEntity.User
	student *userEntity.User
	base    time.Time
}

func createUser(t *testing.T, db *gorm.DB, name string, role userEntity.Role) *userEntity.User {
	t.Helper()
	u := &userEntity.User{
		Uuid:     uuid.NewString(),
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@demo.com",
		Name:     name,
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func newParentFixture(t *testing.T) *parentFixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &parentFixture{
		db:   db,
		base: time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local),
	}
	f.svc = NewParentService(
		userPersistence.NewUserRepository(db),
		userPersistence.NewParentStudentRepository(db),
		persistence.NewChatMemoryRepository(db),
		nil,
	)
	f.parent = createUser(t, db, "Maria Santos", userEntity.RoleParent)
	f.student = createUser(t, db, "João Silva", userEntity.RoleStudent)
	require.NoError(t, db.Create(&userEntity.ParentStudent{ParentId: f.parent.Uuid, StudentId: f.student.Uuid, CreatedAt: time.Now()}).Error)

	memory := func(key, role, text string, minute int) *entity.ChatMemory {
		return &entity.ChatMemory{
			Key:       key,
			Role:      role,
			Timestamp: f.base.Add(time.Duration(minute) * time.Minute).UnixNano(),
			Data:      entity.NewTextData(text),
		}
	}
	require.NoError(t, persistence.NewChatMemoryRepository(db).Create(context.Background(),
		memory("João Silva_def", "user", "Me explique a Revolução Francesa e a guerra", 1),
		memory("João Silva_abc", "user", "Qual a PORCENTAGEM de 10?", 3),
		memory("João Silva_abc", "assistant", "10% de 10 é 1.", 4),
		// matches LIKE 'João Silva_%' but is another student
		memory("João SilvaXoutro", "user", "equação de segundo grau", 5),
	))
	return f
}

func TestGetLinkedStudents(t *testing.T) {
	f := newParentFixture(t)
	ctx := context.Background()

	students, err := f.svc.GetLinkedStudents(ctx, f.parent.Uuid)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, f.student.Uuid, students[0].Id)
	assert.Equal(t, "João Silva", students[0].Name)

	none, err := f.svc.GetLinkedStudents(ctx, f.student.Uuid)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetStudentStats(t *testing.T) {
	f := newParentFixture(t)

	stats, err := f.svc.GetStudentStats(context.Background(), f.parent.Uuid, f.student.Uuid)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 2, stats.TotalMessages)
	require.Len(t, stats.Subjects, 2)
	assert.Equal(t, "Matemática", stats.Subjects[0].Name)
	assert.Equal(t, 1, stats.Subjects[0].Count)
	assert.Equal(t, "História", stats.Subjects[1].Name)
	assert.Equal(t, 1, stats.Subjects[1].Count)

	require.Len(t, stats.RecentActivity, 2)
	assert.Equal(t, "10/03/2024", stats.RecentActivity[0].Date)
	assert.Equal(t, "Qual a PORCENTAGEM de 10?", stats.RecentActivity[0].Topic)
}

func TestStudentDataRequiresLink(t *testing.T) {
	f := newParentFixture(t)
	stranger := createUser(t, f.db, "Outro Pai", userEntity.RoleParent)
	ctx := context.Background()

	_, err := f.svc.GetStudentStats(ctx, stranger.Uuid, f.student.Uuid)
	assert.True(t, xerr.Is(err, xerr.CodeAuthentication))
	_, err = f.svc.GetStudentHistory(ctx, stranger.Uuid, f.student.Uuid)
	assert.True(t, xerr.Is(err, xerr.CodeAuthentication))
	_, err = f.svc.GenerateReportContext(ctx, stranger.Uuid, f.student.Uuid)
	assert.True(t, xerr.Is(err, xerr.CodeAuthentication))
}

func TestGetStudentHistoryGroupsByKey(t *testing.T) {
	f := newParentFixture(t)

	history, err := f.svc.GetStudentHistory(context.Background(), f.parent.Uuid, f.student.Uuid)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "João Silva_abc", history[0].SessionId)
	assert.Equal(t, 2, history[0].MessageCount)
	assert.Equal(t, "assistant", history[0].Messages[0].Role)
	assert.True(t, history[0].Date.Equal(f.base.Add(3*time.Minute)))

	assert.Equal(t, "João Silva_def", history[1].SessionId)
	assert.Equal(t, 1, history[1].MessageCount)
}

func TestReportContextAndPrompt(t *testing.T) {
	f := newParentFixture(t)

	rc, err := f.svc.GenerateReportContext(context.Background(), f.parent.Uuid, f.student.Uuid)
	require.NoError(t, err)
	assert.Equal(t, "João Silva", rc.StudentName)
	assert.Equal(t, 2, rc.TotalMessages)
	assert.Equal(t, 1, rc.AssistantMessages)
	assert.Equal(t, 3, rc.MessagesAnalyzed)

	prompt := BuildReportPrompt(rc)
	assert.Contains(t, prompt, "Analise as conversas abaixo do aluno João Silva")
	assert.Contains(t, prompt, "Total de mensagens analisadas: 3\n")
	assert.Contains(t, prompt, "Total de perguntas do aluno: 2\n")
	assert.Contains(t, prompt, "1. [assistant] 10% de 10 é 1.\n")
	assert.True(t, strings.HasSuffix(prompt, "Gere um relatório estruturado em markdown.\n"))
}

func TestBuildReportPromptTruncates(t *testing.T) {
	rc := &respond.ReportContext{StudentName: "Ana"}
	for i := 0; i < 25; i++ {
		rc.Messages = append(rc.Messages, respond.ReportMessage{Role: "user", Content: strings.Repeat("a", 300)})
	}
	prompt := BuildReportPrompt(rc)
	assert.Contains(t, prompt, "20. [user] "+strings.Repeat("a", 200)+"\n")
	assert.NotContains(t, prompt, "21. [user]")
}

func TestLinkStudent(t *testing.T) {
	f := newParentFixture(t)
	ctx := context.Background()
	other := createUser(t, f.db, "Ana Lima", userEntity.RoleStudent)

	out, err := f.svc.LinkStudent(ctx, f.parent.Uuid, other.Uuid)
	require.NoError(t, err)
	assert.Equal(t, other.Uuid, out.StudentId)

	_, err = f.svc.LinkStudent(ctx, f.parent.Uuid, other.Uuid)
	assert.True(t, xerr.Is(err, xerr.CodeConflict))

	_, err = f.svc.LinkStudent(ctx, f.student.Uuid, other.Uuid)
	assert.True(t, xerr.Is(err, xerr.CodeValidation))

	_, err = f.svc.LinkStudent(ctx, f.parent.Uuid, uuid.NewString())
	assert.True(t, xerr.Is(err, xerr.CodeNotFound))

	students, err := f.svc.GetLinkedStudents(ctx, f.parent.Uuid)
	require.NoError(t, err)
	assert.Len(t, students, 2)
}
