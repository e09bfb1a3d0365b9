package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ChatEduca/internal/modules/parent/application/dto/respond"
	"ChatEduca/internal/modules/parent/domain/entity"
	"ChatEduca/internal/modules/parent/domain/repository"
	userEntity "ChatEduca/internal/modules/user/domain/entity"
	userRepository "ChatEduca/internal/modules/user/domain/repository"
	"ChatEduca/pkg/util"
	"ChatEduca/pkg/xerr"

	"gorm.io/gorm"
)

const (
	recentActivitySize = 5
	topicLength        = 50
	reportWindow       = 100
	dateLayout         = "02/01/2006"
)

type subject struct {
	name     string
	keywords []string
}

// subjects is matched in order; a message may count for several subjects.
var subjects = []subject{
	{"Matemática", []string{"matemática", "número", "cálculo", "porcentagem", "fração", "equação", "soma", "multiplicação"}},
	{"Português", []string{"português", "gramática", "texto", "redação", "verbo", "ortografia", "sujeito", "predicado"}},
	{"Ciências", []string{"ciências", "célula", "sistema solar", "biologia", "física", "química"}},
	{"História", []string{"história", "guerra", "revolução", "império", "república"}},
	{"Geografia", []string{"geografia", "país", "continente", "clima", "relevo"}},
}

// AuditLogger appends rows to the persisted audit log.
type AuditLogger interface {
	Record(ctx context.Context, level, message, userID string, metadata map[string]interface{})
}

type ParentService interface {
	GetLinkedStudents(ctx context.Context, parentID string) ([]respond.StudentItem, error)
	GetStudentStats(ctx context.Context, parentID, studentID string) (*respond.StudentStatsRespond, error)
	GetStudentHistory(ctx context.Context, parentID, studentID string) ([]respond.HistorySession, error)
	GenerateReportContext(ctx context.Context, parentID, studentID string) (*respond.ReportContext, error)
	LinkStudent(ctx context.Context, parentID, studentID string) (*respond.LinkRespond, error)
}

type parentServiceImpl struct {
	users    userRepository.UserRepository
	links    userRepository.ParentStudentRepository
	memories repository.ChatMemoryRepository
	audit    AuditLogger
}

func NewParentService(users userRepository.UserRepository, links userRepository.ParentStudentRepository, memories repository.ChatMemoryRepository, audit AuditLogger) ParentService {
	return &parentServiceImpl{users: users, links: links, memories: memories, audit: audit}
}

func (s *parentServiceImpl) GetLinkedStudents(ctx context.Context, parentID string) ([]respond.StudentItem, error) {
	students, err := s.links.ListStudents(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("list linked students: %w", err)
	}
	out := make([]respond.StudentItem, 0, len(students))
	for _, st := range students {
		out = append(out, respond.StudentItem{Id: st.Uuid, Name: st.Name, Email: st.Email, CreatedAt: st.CreatedAt})
	}
	return out, nil
}

// linkedStudent loads the student when parentID is linked to it. denied is
// the message of the AuthenticationError returned otherwise.
func (s *parentServiceImpl) linkedStudent(ctx context.Context, parentID, studentID, denied string) (*userEntity.User, error) {
	ok, err := s.links.Exists(ctx, parentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check parent link: %w", err)
	}
	if !ok {
		return nil, xerr.Authentication(denied)
	}
	student, err := s.users.GetByUuid(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.NotFound("Aluno")
		}
		return nil, fmt.Errorf("load student: %w", err)
	}
	return student, nil
}

func (s *parentServiceImpl) memoriesOf(ctx context.Context, student *userEntity.User, limit int) ([]entity.ChatMemory, error) {
	rows, err := s.memories.ListByKeyPrefix(ctx, student.Name+"_", limit)
	if err != nil {
		return nil, fmt.Errorf("load chat memory: %w", err)
	}
	return rows, nil
}

func (s *parentServiceImpl) GetStudentStats(ctx context.Context, parentID, studentID string) (*respond.StudentStatsRespond, error) {
	student, err := s.linkedStudent(ctx, parentID, studentID, "Você não tem permissão para acessar os dados deste aluno")
	if err != nil {
		return nil, err
	}
	rows, err := s.memoriesOf(ctx, student, 0)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})
	counts := make([]int, len(subjects))
	out := &respond.StudentStatsRespond{
		Subjects:       []respond.SubjectCount{},
		RecentActivity: []respond.RecentActivity{},
	}
	for i := range rows {
		row := &rows[i]
		keys[row.Key] = struct{}{}
		if row.Role != "user" {
			continue
		}
		out.TotalMessages++
		text := row.Text()
		lower := strings.ToLower(text)
		for j, sub := range subjects {
			if mentions(lower, sub.keywords) {
				counts[j]++
			}
		}
		if len(out.RecentActivity) < recentActivitySize {
			out.RecentActivity = append(out.RecentActivity, respond.RecentActivity{
				Date:  row.Time().Format(dateLayout),
				Topic: util.Ellipsis(text, topicLength),
			})
		}
	}
	for j, sub := range subjects {
		if counts[j] > 0 {
			out.Subjects = append(out.Subjects, respond.SubjectCount{Name: sub.name, Count: counts[j]})
		}
	}
	out.TotalSessions = len(keys)
	return out, nil
}

func mentions(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func (s *parentServiceImpl) GetStudentHistory(ctx context.Context, parentID, studentID string) ([]respond.HistorySession, error) {
	student, err := s.linkedStudent(ctx, parentID, studentID, "Você não tem permissão para acessar o histórico deste aluno")
	if err != nil {
		return nil, err
	}
	rows, err := s.memoriesOf(ctx, student, 0)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	out := make([]respond.HistorySession, 0)
	for i := range rows {
		row := &rows[i]
		pos, ok := index[row.Key]
		if !ok {
			pos = len(out)
			index[row.Key] = pos
			out = append(out, respond.HistorySession{SessionId: row.Key})
		}
		out[pos].Messages = append(out[pos].Messages, respond.HistoryMessage{
			Role:      row.Role,
			Content:   row.Text(),
			CreatedAt: row.Time(),
		})
	}
	// rows are newest first, so the last message of a group is its oldest
	for i := range out {
		out[i].MessageCount = len(out[i].Messages)
		out[i].Date = out[i].Messages[len(out[i].Messages)-1].CreatedAt
	}
	return out, nil
}

func (s *parentServiceImpl) GenerateReportContext(ctx context.Context, parentID, studentID string) (*respond.ReportContext, error) {
	student, err := s.linkedStudent(ctx, parentID, studentID, "Você não tem permissão para gerar relatório deste aluno")
	if err != nil {
		return nil, err
	}
	rows, err := s.memoriesOf(ctx, student, reportWindow)
	if err != nil {
		return nil, err
	}

	out := &respond.ReportContext{StudentName: student.Name, Messages: make([]respond.ReportMessage, 0, len(rows))}
	for i := range rows {
		row := &rows[i]
		out.Messages = append(out.Messages, respond.ReportMessage{Role: row.Role, Content: row.Text(), Date: row.Time()})
		switch row.Role {
		case "user":
			out.TotalMessages++
		case "assistant":
			out.AssistantMessages++
		}
	}
	out.MessagesAnalyzed = len(out.Messages)

	if s.audit != nil {
		s.audit.Record(ctx, "info", "Relatório de aluno gerado", parentID, map[string]interface{}{
			"studentId":        studentID,
			"messagesAnalyzed": out.MessagesAnalyzed,
		})
	}
	return out, nil
}

func (s *parentServiceImpl) LinkStudent(ctx context.Context, parentID, studentID string) (*respond.LinkRespond, error) {
	parentID, studentID = strings.TrimSpace(parentID), strings.TrimSpace(studentID)
	if parentID == "" || studentID == "" {
		return nil, xerr.Validation("parentId e studentId são obrigatórios")
	}

	parent, err := s.loadUser(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Role != userEntity.RoleParent {
		return nil, xerr.Validation("O usuário informado não é um responsável")
	}
	student, err := s.loadUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.Role != userEntity.RoleStudent {
		return nil, xerr.Validation("O usuário informado não é um aluno")
	}

	exists, err := s.links.Exists(ctx, parentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check parent link: %w", err)
	}
	if exists {
		return nil, xerr.Conflict("Vínculo já existe")
	}

	link := &userEntity.ParentStudent{ParentId: parentID, StudentId: studentID, CreatedAt: time.Now()}
	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, xerr.Conflict("Vínculo já existe")
		}
		return nil, fmt.Errorf("create parent link: %w", err)
	}
	if s.audit != nil {
		s.audit.Record(ctx, "info", "Responsável vinculado a aluno", "", map[string]interface{}{
			"parentId":  parentID,
			"studentId": studentID,
		})
	}
	return &respond.LinkRespond{
		ParentId:  parentID,
		StudentId: studentID,
		CreatedAt: link.CreatedAt,
		Message:   "Vínculo criado com sucesso",
	}, nil
}

func (s *parentServiceImpl) loadUser(ctx context.Context, id string) (*userEntity.User, error) {
	u, err := s.users.GetByUuid(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.NotFound("Usuário")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
