package cfn

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
)

// The SDK waiters start polling at 30 s and back off to 120 s; a small stack
// settles within a few polls, so start fast and keep the ceiling low.
const (
	waitMinDelay = 1 * time.Second
	waitMaxDelay = 30 * time.Second
)

func fastUpdate(o *cloudformation.StackUpdateCompleteWaiterOptions) {
	o.MinDelay, o.MaxDelay = waitMinDelay, waitMaxDelay
}

func fastCreate(o *cloudformation.StackCreateCompleteWaiterOptions) {
	o.MinDelay, o.MaxDelay = waitMinDelay, waitMaxDelay
}

func fastDelete(o *cloudformation.StackDeleteCompleteWaiterOptions) {
	o.MinDelay, o.MaxDelay = waitMinDelay, waitMaxDelay
}
