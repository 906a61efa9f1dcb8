package dialogue

import "character-game-server/shared/models"

// template - одна реплика пула с весом выбора.
type template struct {
	text   string
	weight int
}

// Пулы реплик по типам событий. Плейсхолдеры {name}, {medication}, {title}
// подставляются резолвером. Реплики на корейском - язык продукта.
var dialoguePools = map[models.EventType][]template{
	models.EventTypeMedication: {
		{text: "{medication} 먹을 시간이에요! 잊지 마세요~", weight: 3},
		{text: "약 먹을 시간이에요. {medication} 챙겨주세요!", weight: 2},
		{text: "{medication} 아직 안 드셨죠? 건강이 걱정돼요...", weight: 1},
	},
	models.EventTypeBabyFeeding: {
		{text: "{name}(이)가 배고파해요... 수유 시간이에요!", weight: 3},
		{text: "수유할 시간이 됐어요. {name}(이)에게 가주세요~", weight: 2},
	},
	models.EventTypeHealthCheckup: {
		{text: "{title} 예약일이 다가오고 있어요. 잊지 않으셨죠?", weight: 2},
		{text: "건강검진 받을 때가 됐어요! {title} 확인해주세요.", weight: 1},
	},
	models.EventTypeVaccination: {
		{text: "{title} 접종일이 다가와요. 일정 확인해주세요!", weight: 2},
		{text: "예방접종 시기예요! {title} 잊지 마세요~", weight: 1},
	},
	models.EventTypeKCDCAlert: {
		{text: "질병관리청 알림이에요: {title}", weight: 2},
		{text: "건강 소식이 있어요. {title} 확인해주세요!", weight: 1},
	},
	models.EventTypeLifecycleEvent: {
		{text: "오늘은 특별한 날이에요! {title}", weight: 2},
		{text: "{title} - 함께 기념해요!", weight: 1},
	},
}

// fallbackLine используется для неизвестного типа (не должно случаться:
// планировщик валидирует тип до материализации).
const fallbackLine = "오늘도 건강 챙기세요!"
