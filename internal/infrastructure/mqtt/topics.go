package mqtt

// TopicPrefix is the root of every topic published by the collector.
const TopicPrefix = "gruenbeck"

// Topics provides builders for collector MQTT topics.
type Topics struct{}

// Sample returns the topic for samples of the given type and instance.
//
// Example: gruenbeck/gauge/water
func (Topics) Sample(typ, typeInstance string) string {
	return TopicPrefix + "/" + typ + "/" + typeInstance
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: gruenbeck/system/status
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}
