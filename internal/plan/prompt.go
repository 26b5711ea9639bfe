package plan

import (
	"fmt"
	"strings"
)

const planPromptTemplate = `Genera una lista de tareas agrícolas detallada para un cultivo de %[1]s.
Para cada tarea, indica un número de días estimado desde el inicio del plan para realizarla.
Formatea cada tarea así:
[Número de días desde inicio]. [Descripción de la tarea]
Ejemplo:
0. Preparar el terreno y arar.
3. Sembrar las semillas de %[1]s.
7. Primer riego ligero.
No incluyas introducciones, conclusiones, ni texto adicional fuera de la lista de tareas.
Comienza con el día 0.`

var planRequestMarkers = []string{
	"plan de actividades",
	"generar tareas",
	"lista de tareas",
}

// PromptFor builds the request whose reply Parse is built to accept.
func PromptFor(crop string) string {
	return fmt.Sprintf(planPromptTemplate, strings.TrimSpace(crop))
}

func IsPlanRequest(question string) bool {
	q := strings.ToLower(question)
	for _, marker := range planRequestMarkers {
		if strings.Contains(q, marker) {
			return true
		}
	}
	return false
}

// SuggestedQuestions are the canned questions offered for a crop.
func SuggestedQuestions(crop string) []string {
	return []string{
		fmt.Sprintf("Genera un plan de actividades para mi cultivo de %s.", crop),
		fmt.Sprintf("¿Cuáles son las plagas comunes del %s y cómo tratarlas orgánicamente?", crop),
		fmt.Sprintf("¿Cuándo es el mejor momento para cosechar %s?", crop),
	}
}
