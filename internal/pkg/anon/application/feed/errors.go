package feed

import "errors"

var errNoStream = errors.New("feed: no change stream configured")
