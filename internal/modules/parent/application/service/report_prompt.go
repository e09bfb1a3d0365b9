package service

import (
	"fmt"
	"strings"

	"ChatEduca/internal/modules/parent/application/dto/respond"
	"ChatEduca/pkg/util"
)

const (
	promptMessages      = 20
	promptMessageLength = 200
)

// BuildReportPrompt turns a report context into the instruction sent to the
// chat backend.
func BuildReportPrompt(rc *respond.ReportContext) string {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "Você é um assistente educacional. Analise as conversas abaixo do aluno %s e gere um relatório detalhado sobre:\n\n", rc.StudentName)
	b.WriteString("1. **Principais Assuntos Estudados**: Identifique os temas mais recorrentes\n")
	b.WriteString("2. **Progresso de Aprendizagem**: Avalie a evolução nas perguntas e compreensão\n")
	b.WriteString("3. **Áreas de Interesse**: Quais matérias o aluno demonstra mais curiosidade\n")
	b.WriteString("4. **Recomendações**: Sugestões de tópicos para aprofundamento\n\n")
	fmt.Fprintf(&b, "Total de mensagens analisadas: %d\n", rc.MessagesAnalyzed)
	fmt.Fprintf(&b, "Total de perguntas do aluno: %d\n\n", rc.TotalMessages)
	b.WriteString("Conversas recentes:\n")

	lines := make([]string, 0, promptMessages)
	for i, m := range rc.Messages {
		if i == promptMessages {
			break
		}
		lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, m.Role, util.TruncateRunes(m.Content, promptMessageLength)))
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nGere um relatório estruturado em markdown.\n")
	return b.String()
}
