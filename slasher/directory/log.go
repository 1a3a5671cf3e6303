package directory

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "directory")
