// Package storectx acota las llamadas al store con el timeout configurado.
package storectx

import (
	"context"
	"time"
)

// Timeout límite de una operación contra el store. Cero o negativo: sin límite propio.
type Timeout time.Duration

// Bound deriva ctx con el límite. Si ctx ya vence antes, se respeta el plazo más corto.
func (t Timeout) Bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if t <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(t))
}
