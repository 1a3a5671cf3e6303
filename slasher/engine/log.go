package engine

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "engine")
