package game

import "fmt"

// Message is the line shown on the terminal after a charge.
func Message(r Result) string {
	if r.OK() {
		return fmt.Sprintf("Ótimo trabalho! Pagamento de %s aprovado.", FormatBRL(r.Entered))
	}
	return fmt.Sprintf("Pagamento falhou! Esperado %s, mas recebido %s.", FormatBRL(r.Expected), FormatBRL(r.Entered))
}
