package reputation

import "github.com/shenikar/safe_route_system/internal/models"

// Step — шаг изменения репутации за один голос
const Step = 10

// ApplyVote возвращает новый счёт автора отметки после голоса.
// Результат всегда остаётся в пределах [MinScore, MaxScore].
func ApplyVote(currentScore int, approve bool) int {
	if approve {
		return min(currentScore+Step, models.MaxScore)
	}
	return max(currentScore-Step, models.MinScore)
}

// Trusted сообщает, достиг ли счёт порога доверия
func Trusted(score, threshold int) bool {
	return score >= threshold
}
