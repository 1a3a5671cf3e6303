package lockedgold

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "lockedgold")
