package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReview_Validate(t *testing.T) {
	t.Run("正常なレビュー", func(t *testing.T) {
		r := NewReview("tran_abc", "event-1", "client-1", "host-1", 5, "最高でした")
		assert.NoError(t, r.Validate())
	})

	t.Run("コメントは省略できる", func(t *testing.T) {
		r := NewReview("tran_abc", "event-1", "client-1", "host-1", 3, "")
		assert.NoError(t, r.Validate())
	})

	t.Run("トランザクションIDなし", func(t *testing.T) {
		r := NewReview("", "event-1", "client-1", "host-1", 5, "")
		assert.ErrorIs(t, r.Validate(), ErrTransactionIDRequired)
	})

	t.Run("評価の範囲外", func(t *testing.T) {
		for _, rating := range []int{0, 6, -1} {
			r := NewReview("tran_abc", "event-1", "client-1", "host-1", rating, "")
			assert.ErrorIs(t, r.Validate(), ErrInvalidRating)
		}
	})
}
