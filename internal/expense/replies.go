package expense

import (
	"fmt"

	"gastobot/internal/models"
)

// Canned user-facing replies. The chat channel always receives one of
// these; failures never escape as faults.
const (
	replyUnauthorized = "Acesso não autorizado."
	replyInactive     = "Sua conta está inativa."
	replyIncomplete   = "Configuração do Google Sheets incompleta. Por favor, configure suas credenciais."
	replyStoreBusy    = "Erro temporário no banco de dados. Tente novamente em instantes."
	replyStoreFailed  = "Erro ao validar usuário."

	replyInvalidFormat = "Formato inválido. Envie algo como:\n`19,20 café lifestyle`\nou\n`19,20 café lifestyle (dividir)`"

	replyConnectError = "Não foi possível conectar ao Google Sheets. Tente novamente mais tarde."
	replySaveError    = "Não foi possível salvar o gasto na planilha. Tente novamente."
)

func formatSuccess(rec models.ExpenseRecord) string {
	return fmt.Sprintf("Gravado ✔️\nData: %s\nPreço: %s\nProduto: %s\nCategoria: %s",
		rec.Date, rec.Price.String(), rec.Product, rec.Category)
}
